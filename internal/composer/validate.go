package composer

import "strings"

// Validate runs the synchronous pre-submit checks. It returns nil when the
// draft may be submitted; otherwise the returned error carries the
// top-level message and per-row field errors, and no network call may be
// made.
func Validate(d *Draft) *ValidationError {
	verr := &ValidationError{
		Medicines:  make(map[int][]string),
		Procedures: make(map[int][]string),
		LabTests:   make(map[int][]string),
	}

	if strings.TrimSpace(d.Diagnosis) == "" {
		verr.Message = "Diagnosis is required."
	}

	complete := 0
	for i, row := range d.Medicines {
		if strings.TrimSpace(row.MedicineName) == "" {
			continue
		}
		if strings.TrimSpace(row.Dosage) != "" {
			complete++
		}
		var missing []string
		if strings.TrimSpace(row.Dosage) == "" {
			missing = append(missing, "dosage is required")
		}
		if strings.TrimSpace(row.Frequency) == "" {
			missing = append(missing, "frequency is required")
		}
		if strings.TrimSpace(row.Duration) == "" {
			missing = append(missing, "duration is required")
		}
		if len(missing) > 0 {
			verr.Medicines[i] = missing
		}
	}

	if complete == 0 && verr.Message == "" {
		verr.Message = "Add at least one medicine with a name and dosage."
	}

	for i, row := range d.Procedures {
		if row.Code != "" && strings.TrimSpace(row.Name) == "" {
			verr.Procedures[i] = []string{"procedure name is missing for the selected code"}
		}
	}

	for i, row := range d.LabTests {
		if row.Code != "" && strings.TrimSpace(row.Name) == "" {
			verr.LabTests[i] = []string{"lab test name is missing for the selected code"}
		}
	}

	if verr.empty() {
		return nil
	}
	if verr.Message == "" {
		verr.Message = "Please fix the highlighted rows before submitting."
	}
	return verr
}
