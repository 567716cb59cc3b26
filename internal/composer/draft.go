// Package composer owns the prescription draft: repeatable medicine,
// procedure, and lab-test rows, the derivation rules that auto-fill row
// fields from catalog selections, pre-submit validation, and the multi-step
// save workflow against the hospital backend. The draft lives in memory
// only; it is never partially persisted.
package composer

// MedicineRow is one prescribed medicine line.
type MedicineRow struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	MedicineType string `json:"medicine_type"`
	Route        string `json:"route_of_administration"`
	Duration     string `json:"duration"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions"`
	Quantity     string `json:"quantity"`
}

// ProcedureRow is one recommended procedure. Code and Name come from the
// catalog; Notes is free text and survives reselection.
type ProcedureRow struct {
	Code      string  `json:"procedure_code"`
	Name      string  `json:"procedure_name"`
	Notes     string  `json:"notes"`
	Category  string  `json:"category,omitempty"`
	BasePrice float64 `json:"base_price,omitempty"`
}

type LabTestRow struct {
	Code            string  `json:"lab_test_code"`
	Name            string  `json:"lab_test_name"`
	Notes           string  `json:"notes"`
	Category        string  `json:"category,omitempty"`
	BasePrice       float64 `json:"base_price,omitempty"`
	SpecimenType    string  `json:"specimen_type,omitempty"`
	FastingRequired bool    `json:"fasting_required,omitempty"`
	TurnaroundHours int     `json:"turnaround_time_hours,omitempty"`
}

// Draft is the client-held prescription being composed. Exactly one row per
// list is expanded at a time; expanding or collapsing never mutates row
// data.
type Draft struct {
	Diagnosis                    string `json:"diagnosis"`
	Notes                        string `json:"notes"`
	Investigation                string `json:"investigation"`
	PresentingComplaint          string `json:"presenting_complaint"`
	HistoryOfPresentingComplaint string `json:"history_of_presenting_complaint"`
	PrescriptionImage            string `json:"prescriptionImage,omitempty"`

	Medicines  []MedicineRow  `json:"items"`
	Procedures []ProcedureRow `json:"recommendedProcedures"`
	LabTests   []LabTestRow   `json:"recommendedLabTests"`

	ExpandedMedicine  int `json:"-"`
	ExpandedProcedure int `json:"-"`
	ExpandedLabTest   int `json:"-"`
}

// NewDraft returns an empty draft with a single blank medicine row.
func NewDraft() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// Reset restores the post-submission state: one empty medicine row, no
// procedures, no lab tests, scalars cleared.
func (d *Draft) Reset() {
	*d = Draft{
		Medicines: []MedicineRow{{}},
	}
}

// AddMedicine appends an empty row and expands it. Returns the new index.
func (d *Draft) AddMedicine() int {
	d.Medicines = append(d.Medicines, MedicineRow{})
	d.ExpandedMedicine = len(d.Medicines) - 1
	return d.ExpandedMedicine
}

// RemoveMedicine deletes row i outright. Removal of the last remaining row
// is refused.
func (d *Draft) RemoveMedicine(i int) error {
	if i < 0 || i >= len(d.Medicines) {
		return ErrRowOutOfRange
	}
	if len(d.Medicines) == 1 {
		return ErrLastMedicineRow
	}
	d.Medicines = append(d.Medicines[:i], d.Medicines[i+1:]...)
	if d.ExpandedMedicine >= len(d.Medicines) {
		d.ExpandedMedicine = len(d.Medicines) - 1
	}
	return nil
}

func (d *Draft) AddProcedure() int {
	d.Procedures = append(d.Procedures, ProcedureRow{})
	d.ExpandedProcedure = len(d.Procedures) - 1
	return d.ExpandedProcedure
}

func (d *Draft) RemoveProcedure(i int) error {
	if i < 0 || i >= len(d.Procedures) {
		return ErrRowOutOfRange
	}
	d.Procedures = append(d.Procedures[:i], d.Procedures[i+1:]...)
	if d.ExpandedProcedure >= len(d.Procedures) {
		d.ExpandedProcedure = len(d.Procedures) - 1
	}
	return nil
}

func (d *Draft) AddLabTest() int {
	d.LabTests = append(d.LabTests, LabTestRow{})
	d.ExpandedLabTest = len(d.LabTests) - 1
	return d.ExpandedLabTest
}

func (d *Draft) RemoveLabTest(i int) error {
	if i < 0 || i >= len(d.LabTests) {
		return ErrRowOutOfRange
	}
	d.LabTests = append(d.LabTests[:i], d.LabTests[i+1:]...)
	if d.ExpandedLabTest >= len(d.LabTests) {
		d.ExpandedLabTest = len(d.LabTests) - 1
	}
	return nil
}

// SetMedicineFrequency updates row i's frequency and rederives quantity.
func (d *Draft) SetMedicineFrequency(i int, frequency string) error {
	if i < 0 || i >= len(d.Medicines) {
		return ErrRowOutOfRange
	}
	d.Medicines[i].Frequency = frequency
	d.rederiveQuantity(i)
	return nil
}

// SetMedicineDuration updates row i's duration and rederives quantity.
func (d *Draft) SetMedicineDuration(i int, duration string) error {
	if i < 0 || i >= len(d.Medicines) {
		return ErrRowOutOfRange
	}
	d.Medicines[i].Duration = duration
	d.rederiveQuantity(i)
	return nil
}

// rederiveQuantity overwrites the quantity outright whenever the derivation
// yields a result; an underivable combination leaves the field for manual
// entry.
func (d *Draft) rederiveQuantity(i int) {
	row := &d.Medicines[i]
	if q := DeriveQuantity(row.Frequency, row.Duration); q != "" {
		row.Quantity = q
	}
}
