package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carehub/consult-api/internal/domain/catalog"
)

func TestDailyDoseCount(t *testing.T) {
	tests := []struct {
		frequency string
		want      float64
		ok        bool
	}{
		{"OD", 1, true},
		{"BD", 2, true},
		{"bd", 2, true},
		{"TDS", 3, true},
		{"QDS", 4, true},
		{"q.o.d.", 0.5, true},
		{"Q4H", 6, true},
		{"Q6H", 4, true},
		{"Q8H", 3, true},
		{"Q12H", 2, true},
		{"STAT", 1, true},
		{"1-1-1", 3, true},
		{"1-0-1", 2, true},
		{"0.5-0-0.5", 1, true},
		{"2 times a day", 2, true},
		{"3 times daily", 3, true},
		{"2 times per day", 2, true},
		{"PRN", 0, true},
		{"SOS", 0, true},
		{"", 0, false},
		{"whenever", 0, false},
		{"1-1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			got, ok := DailyDoseCount(tt.frequency)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationDays(t *testing.T) {
	tests := []struct {
		duration string
		want     int
		ok       bool
	}{
		{"5 days", 5, true},
		{"10 days", 10, true},
		{"1 week", 1, true},
		{"30", 30, true},
		{"ongoing", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			got, ok := DurationDays(tt.duration)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveQuantity(t *testing.T) {
	tests := []struct {
		name      string
		frequency string
		duration  string
		want      string
	}{
		{"twice daily for five days", "BD", "5 days", "10"},
		{"explicit schedule", "1-1-1", "3 days", "9"},
		{"alternate days keeps fraction", "q.o.d.", "5 days", "2.5"},
		{"as needed derives nothing", "PRN", "5 days", ""},
		{"unknown frequency derives nothing", "whenever", "5 days", ""},
		{"unknown duration derives nothing", "BD", "until review", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveQuantity(tt.frequency, tt.duration))
		})
	}
}

func TestFormDerivations(t *testing.T) {
	typ, ok := DeriveType("Tablet")
	require.True(t, ok)
	assert.Equal(t, "Tablet", typ)

	route, ok := DeriveRoute("injection")
	require.True(t, ok)
	assert.Equal(t, "Intravenous", route)

	dose, ok := DeriveDefaultDose("Syrup")
	require.True(t, ok)
	assert.Equal(t, "5ml", dose)

	inst, ok := DeriveInstructions("suspension")
	require.True(t, ok)
	assert.Equal(t, "Shake well before use", inst)

	_, ok = DeriveType("nebulizer solution")
	assert.False(t, ok)
}

func TestApplyMedicineSelection(t *testing.T) {
	row := MedicineRow{}
	ApplyMedicineSelection(&row, &catalog.Option{
		Value:      "Paracetamol",
		DosageForm: "Tablet",
		Strength:   "500mg",
	})
	assert.Equal(t, "Paracetamol", row.MedicineName)
	assert.Equal(t, "Tablet", row.MedicineType)
	assert.Equal(t, "Oral", row.Route)
	assert.Equal(t, "500mg", row.Dosage)
	assert.Equal(t, "Take with water", row.Instructions)
}

func TestApplyMedicineSelectionDefaultsDoseFromForm(t *testing.T) {
	row := MedicineRow{}
	ApplyMedicineSelection(&row, &catalog.Option{Value: "ORS", DosageForm: "Powder"})
	assert.Equal(t, "ORS", row.MedicineName)
	assert.Equal(t, "Powder", row.MedicineType)
	assert.Equal(t, "Oral", row.Route)
	// Powder has no default dose entry; the field stays blank.
	assert.Empty(t, row.Dosage)
}

func TestApplyMedicineSelectionClearWipesRow(t *testing.T) {
	row := MedicineRow{MedicineName: "Paracetamol", Dosage: "500mg", Frequency: "BD", Quantity: "10"}
	ApplyMedicineSelection(&row, nil)
	assert.Equal(t, MedicineRow{}, row)
}

func TestApplyProcedureSelectionPreservesNotes(t *testing.T) {
	row := ProcedureRow{Notes: "left knee"}
	ApplyProcedureSelection(&row, &catalog.Option{
		Value:     "PROC001",
		Name:      "Knee X-Ray",
		Category:  "Radiology",
		BasePrice: 450,
	})
	assert.Equal(t, "PROC001", row.Code)
	assert.Equal(t, "Knee X-Ray", row.Name)
	assert.Equal(t, "left knee", row.Notes)
	assert.Equal(t, 450.0, row.BasePrice)

	ApplyProcedureSelection(&row, nil)
	assert.Equal(t, ProcedureRow{Notes: "left knee"}, row)
}

func TestApplyLabTestSelection(t *testing.T) {
	row := LabTestRow{Notes: "fasting sample"}
	ApplyLabTestSelection(&row, &catalog.Option{
		Value:           "LAB010",
		Name:            "Fasting Blood Sugar",
		Category:        "Biochemistry",
		BasePrice:       120,
		SpecimenType:    "Blood",
		FastingRequired: true,
		TurnaroundHours: 4,
	})
	assert.Equal(t, "LAB010", row.Code)
	assert.Equal(t, "fasting sample", row.Notes)
	assert.True(t, row.FastingRequired)
	assert.Equal(t, 4, row.TurnaroundHours)
}
