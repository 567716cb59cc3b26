package composer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLastMedicineRow refuses removal of the final medicine row; a
	// prescription form always shows at least one.
	ErrLastMedicineRow = errors.New("a prescription keeps at least one medicine row")
	ErrRowOutOfRange   = errors.New("row index out of range")
)

// ValidationError carries the top-level message plus per-row field errors,
// keyed by row index so the owning form can surface them inline.
type ValidationError struct {
	Message    string
	Medicines  map[int][]string
	Procedures map[int][]string
	LabTests   map[int][]string
}

func (e *ValidationError) Error() string {
	parts := []string{e.Message}
	for i, fields := range e.Medicines {
		parts = append(parts, fmt.Sprintf("medicine row %d: %s", i, strings.Join(fields, ", ")))
	}
	for i, fields := range e.Procedures {
		parts = append(parts, fmt.Sprintf("procedure row %d: %s", i, strings.Join(fields, ", ")))
	}
	for i, fields := range e.LabTests {
		parts = append(parts, fmt.Sprintf("lab test row %d: %s", i, strings.Join(fields, ", ")))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return e.Message == "" && len(e.Medicines) == 0 && len(e.Procedures) == 0 && len(e.LabTests) == 0
}
