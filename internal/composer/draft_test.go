package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraftHasOneBlankMedicineRow(t *testing.T) {
	d := NewDraft()
	require.Len(t, d.Medicines, 1)
	assert.Equal(t, MedicineRow{}, d.Medicines[0])
	assert.Empty(t, d.Procedures)
	assert.Empty(t, d.LabTests)
}

func TestAddMedicineExpandsNewRow(t *testing.T) {
	d := NewDraft()
	i := d.AddMedicine()
	assert.Equal(t, 1, i)
	assert.Equal(t, 1, d.ExpandedMedicine)
	assert.Len(t, d.Medicines, 2)
}

func TestRemoveMedicineRefusesLastRow(t *testing.T) {
	d := NewDraft()
	err := d.RemoveMedicine(0)
	assert.ErrorIs(t, err, ErrLastMedicineRow)
	assert.Len(t, d.Medicines, 1)
}

func TestRemoveMedicineDeletesRowAndClampsExpansion(t *testing.T) {
	d := NewDraft()
	d.Medicines[0].MedicineName = "Paracetamol"
	d.AddMedicine()
	d.Medicines[1].MedicineName = "Amoxicillin"
	d.AddMedicine()
	require.Equal(t, 2, d.ExpandedMedicine)

	require.NoError(t, d.RemoveMedicine(2))
	assert.Equal(t, 1, d.ExpandedMedicine)
	require.NoError(t, d.RemoveMedicine(0))
	require.Len(t, d.Medicines, 1)
	assert.Equal(t, "Amoxicillin", d.Medicines[0].MedicineName)
}

func TestRemoveMedicineOutOfRange(t *testing.T) {
	d := NewDraft()
	d.AddMedicine()
	assert.ErrorIs(t, d.RemoveMedicine(5), ErrRowOutOfRange)
	assert.ErrorIs(t, d.RemoveMedicine(-1), ErrRowOutOfRange)
}

func TestProcedureAndLabTestRowsStartEmpty(t *testing.T) {
	d := NewDraft()
	d.AddProcedure()
	d.AddLabTest()
	require.NoError(t, d.RemoveProcedure(0))
	require.NoError(t, d.RemoveLabTest(0))
	assert.Empty(t, d.Procedures)
	assert.Empty(t, d.LabTests)
}

func TestSetFrequencyAndDurationDeriveQuantity(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.SetMedicineFrequency(0, "BD"))
	assert.Empty(t, d.Medicines[0].Quantity)

	require.NoError(t, d.SetMedicineDuration(0, "5 days"))
	assert.Equal(t, "10", d.Medicines[0].Quantity)

	require.NoError(t, d.SetMedicineFrequency(0, "1-1-1"))
	assert.Equal(t, "15", d.Medicines[0].Quantity)
}

func TestUnderivableQuantityLeavesManualEntry(t *testing.T) {
	d := NewDraft()
	d.Medicines[0].Quantity = "12"
	require.NoError(t, d.SetMedicineFrequency(0, "PRN"))
	require.NoError(t, d.SetMedicineDuration(0, "5 days"))
	assert.Equal(t, "12", d.Medicines[0].Quantity)
}

func TestResetRestoresBlankDraft(t *testing.T) {
	d := NewDraft()
	d.Diagnosis = "Acute pharyngitis"
	d.Medicines[0].MedicineName = "Paracetamol"
	d.AddProcedure()
	d.AddLabTest()

	d.Reset()
	assert.Empty(t, d.Diagnosis)
	require.Len(t, d.Medicines, 1)
	assert.Equal(t, MedicineRow{}, d.Medicines[0])
	assert.Empty(t, d.Procedures)
	assert.Empty(t, d.LabTests)
}

func TestValidateRequiresDiagnosis(t *testing.T) {
	d := NewDraft()
	d.Medicines[0] = MedicineRow{MedicineName: "Paracetamol", Dosage: "500mg", Frequency: "BD", Duration: "5 days"}
	verr := Validate(d)
	require.NotNil(t, verr)
	assert.Equal(t, "Diagnosis is required.", verr.Message)
}

func TestValidateRequiresOneCompleteMedicine(t *testing.T) {
	d := NewDraft()
	d.Diagnosis = "Acute pharyngitis"
	verr := Validate(d)
	require.NotNil(t, verr)
	assert.Equal(t, "Add at least one medicine with a name and dosage.", verr.Message)
}

func TestValidateFlagsMissingRowFields(t *testing.T) {
	d := NewDraft()
	d.Diagnosis = "Acute pharyngitis"
	d.Medicines[0] = MedicineRow{MedicineName: "Paracetamol", Dosage: "500mg"}
	verr := Validate(d)
	require.NotNil(t, verr)
	assert.Equal(t, "Please fix the highlighted rows before submitting.", verr.Message)
	assert.Equal(t, []string{"frequency is required", "duration is required"}, verr.Medicines[0])
}

func TestValidateIgnoresBlankRows(t *testing.T) {
	d := NewDraft()
	d.Diagnosis = "Acute pharyngitis"
	d.Medicines[0] = MedicineRow{MedicineName: "Paracetamol", Dosage: "500mg", Frequency: "BD", Duration: "5 days"}
	d.AddMedicine()
	assert.Nil(t, Validate(d))
}

func TestValidateFlagsCodeWithoutName(t *testing.T) {
	d := NewDraft()
	d.Diagnosis = "Acute pharyngitis"
	d.Medicines[0] = MedicineRow{MedicineName: "Paracetamol", Dosage: "500mg", Frequency: "BD", Duration: "5 days"}
	d.Procedures = []ProcedureRow{{Code: "PROC001"}}
	d.LabTests = []LabTestRow{{Code: "LAB010"}}
	verr := Validate(d)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Procedures[0][0], "procedure name")
	assert.Contains(t, verr.LabTests[0][0], "lab test name")
}
