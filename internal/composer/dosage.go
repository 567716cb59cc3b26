package composer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/carehub/consult-api/internal/domain/catalog"
)

// Dosage-form derivation tables. A form not listed here derives nothing:
// the dependent field stays blank rather than guessed.

var formTypes = map[string]string{
	"tablet":      "Tablet",
	"capsule":     "Capsule",
	"syrup":       "Syrup",
	"suspension":  "Syrup",
	"injection":   "Injection",
	"cream":       "Topical",
	"ointment":    "Topical",
	"gel":         "Topical",
	"lotion":      "Topical",
	"drops":       "Drops",
	"inhaler":     "Inhaler",
	"suppository": "Suppository",
	"powder":      "Powder",
}

var formRoutes = map[string]string{
	"tablet":      "Oral",
	"capsule":     "Oral",
	"syrup":       "Oral",
	"suspension":  "Oral",
	"powder":      "Oral",
	"injection":   "Intravenous",
	"cream":       "Topical",
	"ointment":    "Topical",
	"gel":         "Topical",
	"lotion":      "Topical",
	"drops":       "Ophthalmic",
	"inhaler":     "Inhalation",
	"suppository": "Rectal",
}

// Default dose text, used only when the catalog option carries no strength.
var formDefaultDoses = map[string]string{
	"tablet":      "1 tablet",
	"capsule":     "1 capsule",
	"syrup":       "5ml",
	"suspension":  "5ml",
	"injection":   "1 vial",
	"drops":       "2 drops",
	"inhaler":     "2 puffs",
	"cream":       "Apply thin layer",
	"ointment":    "Apply thin layer",
	"gel":         "Apply thin layer",
	"suppository": "1 suppository",
}

var formInstructions = map[string]string{
	"tablet":      "Take with water",
	"capsule":     "Swallow whole with water",
	"syrup":       "Shake well before use",
	"suspension":  "Shake well before use",
	"injection":   "To be administered by a healthcare professional",
	"cream":       "Apply to the affected area",
	"ointment":    "Apply to the affected area",
	"gel":         "Apply to the affected area",
	"drops":       "Instill as directed",
	"inhaler":     "Inhale as directed",
	"suppository": "Insert as directed",
}

func DeriveType(form string) (string, bool) {
	v, ok := formTypes[strings.ToLower(strings.TrimSpace(form))]
	return v, ok
}

func DeriveRoute(form string) (string, bool) {
	v, ok := formRoutes[strings.ToLower(strings.TrimSpace(form))]
	return v, ok
}

func DeriveDefaultDose(form string) (string, bool) {
	v, ok := formDefaultDoses[strings.ToLower(strings.TrimSpace(form))]
	return v, ok
}

func DeriveInstructions(form string) (string, bool) {
	v, ok := formInstructions[strings.ToLower(strings.TrimSpace(form))]
	return v, ok
}

// ApplyMedicineSelection merges a committed medicine option into the row.
// A nil option or empty value clears the name, the four derived fields, and
// the frequency/duration/quantity trio. Otherwise the derived fields are
// rebuilt from the option's dosage form; anything the tables do not cover
// is left blank.
func ApplyMedicineSelection(row *MedicineRow, opt *catalog.Option) {
	if opt == nil || opt.Value == "" {
		*row = MedicineRow{}
		return
	}

	row.MedicineName = opt.Value
	row.MedicineType, _ = DeriveType(opt.DosageForm)
	row.Route, _ = DeriveRoute(opt.DosageForm)
	row.Instructions, _ = DeriveInstructions(opt.DosageForm)

	if opt.Strength != "" {
		row.Dosage = opt.Strength
	} else {
		row.Dosage, _ = DeriveDefaultDose(opt.DosageForm)
	}
}

// ApplyProcedureSelection merges a committed procedure option into the row.
// Clearing the selection clears every derived field but preserves the
// clinician's notes.
func ApplyProcedureSelection(row *ProcedureRow, opt *catalog.Option) {
	notes := row.Notes
	if opt == nil || opt.Value == "" {
		*row = ProcedureRow{Notes: notes}
		return
	}
	*row = ProcedureRow{
		Code:      opt.Value,
		Name:      opt.Name,
		Notes:     notes,
		Category:  opt.Category,
		BasePrice: opt.BasePrice,
	}
}

func ApplyLabTestSelection(row *LabTestRow, opt *catalog.Option) {
	notes := row.Notes
	if opt == nil || opt.Value == "" {
		*row = LabTestRow{Notes: notes}
		return
	}
	*row = LabTestRow{
		Code:            opt.Value,
		Name:            opt.Name,
		Notes:           notes,
		Category:        opt.Category,
		BasePrice:       opt.BasePrice,
		SpecimenType:    opt.SpecimenType,
		FastingRequired: opt.FastingRequired,
		TurnaroundHours: opt.TurnaroundHours,
	}
}

// Frequency codes mapped to doses per day. PRN/SOS are as-needed and derive
// no quantity.
var frequencyDoses = map[string]float64{
	"od":     1,
	"mane":   1,
	"nocte":  1,
	"q.a.m.": 1,
	"q.p.m.": 1,
	"stat":   1,
	"q.o.d.": 0.5,
	"bd":     2,
	"tds":    3,
	"qds":    4,
	"q4h":    24 / 4,
	"q6h":    24 / 6,
	"q8h":    24 / 8,
	"q12h":   24 / 12,
	"ac":     3,
	"pc":     3,
	"prn":    0,
	"sos":    0,
}

var timesDailyPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*times?\s*(?:a\s+day|per\s+day|daily)$`)

// DailyDoseCount parses a frequency into doses per day. It recognizes
// explicit "N-N-N" schedules (summed), the standard frequency codes, and
// free-text "N times daily".
func DailyDoseCount(frequency string) (float64, bool) {
	freq := strings.TrimSpace(frequency)
	if freq == "" {
		return 0, false
	}

	if parts := strings.Split(freq, "-"); len(parts) == 3 {
		var sum float64
		ok := true
		for _, p := range parts {
			n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				ok = false
				break
			}
			sum += n
		}
		if ok {
			return sum, true
		}
	}

	if n, ok := frequencyDoses[strings.ToLower(freq)]; ok {
		return n, true
	}

	if m := timesDailyPattern.FindStringSubmatch(freq); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return n, true
		}
	}

	return 0, false
}

// DurationDays parses the leading integer of a duration label, e.g.
// "5 days" -> 5.
func DurationDays(duration string) (int, bool) {
	s := strings.TrimSpace(duration)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DeriveQuantity computes dispense quantity as doses-per-day times duration
// in days. It returns "" when either side is unrecognized or the product is
// zero, leaving the field for manual entry.
func DeriveQuantity(frequency, duration string) string {
	doses, ok := DailyDoseCount(frequency)
	if !ok {
		return ""
	}
	days, ok := DurationDays(duration)
	if !ok {
		return ""
	}
	qty := doses * float64(days)
	if qty <= 0 {
		return ""
	}
	return strconv.FormatFloat(qty, 'f', -1, 64)
}
