package catalog

// Option is one selectable entry in a searchable list. Label and Value are
// always set for catalog-backed options; the remaining fields carry whatever
// metadata the owning catalog provides, so a selection can auto-fill
// dependent form fields instead of handing back a bare value.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`

	// Medicine catalog (NLEM)
	DosageForm      string `json:"dosage,omitempty"`
	Strength        string `json:"strength,omitempty"`
	Code            string `json:"code,omitempty"`
	HealthcareLevel string `json:"healthcare_level,omitempty"`

	// Procedure / lab-test catalogs
	Name              string  `json:"name,omitempty"`
	Category          string  `json:"category,omitempty"`
	BasePrice         float64 `json:"base_price,omitempty"`
	DurationMinutes   int     `json:"duration_minutes,omitempty"`
	InsuranceCoverage float64 `json:"insurance_coverage,omitempty"`
	SpecimenType      string  `json:"specimen_type,omitempty"`
	FastingRequired   bool    `json:"fasting_required,omitempty"`
	TurnaroundHours   int     `json:"turnaround_time_hours,omitempty"`
	Description       string  `json:"description,omitempty"`

	// IsCustom marks an option synthesized from free-typed text that
	// matched nothing in the catalog.
	IsCustom bool `json:"isCustom,omitempty"`
}

// Custom builds the option for free-solo text with no catalog match.
func Custom(text string) Option {
	return Option{Label: text, Value: text, IsCustom: true}
}
