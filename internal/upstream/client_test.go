package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.UpstreamConfig{
		BaseURL:        srv.URL + "/api",
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop(), nil)
}

func TestSearchMedicinesMapsRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/NLEMmedicines/search", r.URL.Path)
		assert.Equal(t, "para", r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]map[string]any{
			{
				"medicine_name":        "Paracetamol",
				"dosage_form":          "Tablet",
				"strength":             "500mg",
				"nlem_code":            "NLEM001",
				"therapeutic_category": "Analgesic",
			},
		})
	})

	ctx := WithToken(context.Background(), "tok-1")
	options, err := client.SearchMedicines(ctx, "para", 20)
	require.NoError(t, err)
	require.Len(t, options, 1)

	opt := options[0]
	assert.Equal(t, "Paracetamol", opt.Label)
	assert.Equal(t, "Paracetamol", opt.Value)
	assert.Equal(t, "Tablet", opt.DosageForm)
	assert.Equal(t, "500mg", opt.Strength)
	assert.Equal(t, "NLEM001", opt.Code)
	assert.Equal(t, "Analgesic", opt.Category)
}

func TestSearchProceduresUsesCodeAsValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"code": "PROC001", "name": "Knee X-Ray", "category": "Radiology", "base_price": 450.0},
		})
	})

	options, err := client.SearchProcedures(context.Background(), "knee", 20)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "PROC001", options[0].Value)
	assert.Equal(t, "Knee X-Ray", options[0].Label)
	assert.Equal(t, 450.0, options[0].BasePrice)
}

func TestGetLabTest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/labtests/LAB010", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"code":                  "LAB010",
			"name":                  "Fasting Blood Sugar",
			"base_price":            120.0,
			"specimen_type":         "Blood",
			"fasting_required":      true,
			"turnaround_time_hours": 4,
		})
	})

	detail, err := client.GetLabTest(context.Background(), "LAB010")
	require.NoError(t, err)
	assert.Equal(t, "Fasting Blood Sugar", detail.Name)
	assert.True(t, detail.FastingRequired)
	assert.Equal(t, 4, detail.TurnaroundHours)
}

func TestCreatePrescriptionPostsPayload(t *testing.T) {
	var received PrescriptionPayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/prescriptions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"_id": "rx-1", "prescription_number": "RX-2026-0001"})
	})

	receipt, err := client.CreatePrescription(context.Background(), &PrescriptionPayload{
		AppointmentID: "apt-1",
		Diagnosis:     "Acute pharyngitis",
		Items: []PrescriptionItem{
			{MedicineName: "Paracetamol", Dosage: "500mg", Frequency: "BD", Duration: "5 days", Quantity: "10"},
		},
		HasProcedures:    false,
		ProceduresStatus: "none",
		LabTestsStatus:   "none",
	})
	require.NoError(t, err)
	assert.Equal(t, "rx-1", receipt.ID)
	assert.Equal(t, "RX-2026-0001", receipt.Number)
	assert.Equal(t, "apt-1", received.AppointmentID)
	require.Len(t, received.Items, 1)
	assert.Equal(t, "10", received.Items[0].Quantity)
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"appointment not found"}`, http.StatusNotFound)
	})

	err := client.CompleteAppointment(context.Background(), "apt-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "appointment not found")
}

func TestCalculateAppointmentSalary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/salaries/calculate-appointment/apt-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"amount": 250.0})
	})

	amount, err := client.CalculateAppointmentSalary(context.Background(), "apt-1")
	require.NoError(t, err)
	assert.Equal(t, 250.0, amount)
}

func TestUserMessageClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"connectivity", context.DeadlineExceeded, "Could not reach the hospital server"},
		{"validation", &APIError{StatusCode: 400}, "failed validation"},
		{"session", &APIError{StatusCode: 401}, "session has expired"},
		{"forbidden", &APIError{StatusCode: 403}, "permission"},
		{"not found", &APIError{StatusCode: 404}, "Appointment not found"},
		{"invalid selection", &APIError{StatusCode: 422}, "invalid"},
		{"server error", &APIError{StatusCode: 503}, "hospital server encountered an error"},
		{"other", &APIError{StatusCode: 418}, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, UserMessage(tt.err), tt.want)
		})
	}
}
