// Package upstream is the typed client for the hospital backend REST API.
// The console holds no state of its own; every catalog, prescription,
// appointment, and salary operation goes through here. No call is retried —
// retry is always a clinician decision.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/config"
	"github.com/carehub/consult-api/internal/domain/catalog"
	"github.com/carehub/consult-api/pkg/metrics"
)

type tokenKey struct{}

// WithToken carries the caller's bearer token to forward upstream. The
// backend owns authorization; the console only relays credentials.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewClient(cfg config.UpstreamConfig, log *zap.Logger, m *metrics.Collector) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		log:     log,
		metrics: m,
	}
}

type medicineRecord struct {
	MedicineName        string `json:"medicine_name"`
	DosageForm          string `json:"dosage_form"`
	Strength            string `json:"strength"`
	NLEMCode            string `json:"nlem_code"`
	HealthcareLevel     string `json:"healthcare_level"`
	TherapeuticCategory string `json:"therapeutic_category"`
}

// SearchMedicines queries the NLEM medicine catalog.
func (c *Client) SearchMedicines(ctx context.Context, term string, limit int) ([]catalog.Option, error) {
	var records []medicineRecord
	q := url.Values{"q": {term}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, "search medicines", http.MethodGet, "/NLEMmedicines/search", q, nil, &records); err != nil {
		return nil, err
	}

	options := make([]catalog.Option, 0, len(records))
	for _, r := range records {
		options = append(options, catalog.Option{
			Label:           r.MedicineName,
			Value:           r.MedicineName,
			DosageForm:      r.DosageForm,
			Strength:        r.Strength,
			Code:            r.NLEMCode,
			HealthcareLevel: r.HealthcareLevel,
			Category:        r.TherapeuticCategory,
		})
	}
	return options, nil
}

// ProcedureDetail is the authoritative procedure record fetched at submit
// time; the search result metadata is treated as advisory only.
type ProcedureDetail struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	BasePrice         float64 `json:"base_price"`
	DurationMinutes   int     `json:"duration_minutes"`
	InsuranceCoverage float64 `json:"insurance_coverage"`
}

func (c *Client) SearchProcedures(ctx context.Context, term string, limit int) ([]catalog.Option, error) {
	var records []ProcedureDetail
	q := url.Values{"q": {term}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, "search procedures", http.MethodGet, "/procedures/search", q, nil, &records); err != nil {
		return nil, err
	}

	options := make([]catalog.Option, 0, len(records))
	for _, r := range records {
		options = append(options, catalog.Option{
			Label:             r.Name,
			Value:             r.Code,
			Code:              r.Code,
			Name:              r.Name,
			Category:          r.Category,
			BasePrice:         r.BasePrice,
			DurationMinutes:   r.DurationMinutes,
			InsuranceCoverage: r.InsuranceCoverage,
		})
	}
	return options, nil
}

func (c *Client) GetProcedure(ctx context.Context, code string) (*ProcedureDetail, error) {
	var detail ProcedureDetail
	if err := c.do(ctx, "get procedure", http.MethodGet, "/procedures/"+url.PathEscape(code), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) IncrementProcedureUsage(ctx context.Context, code string) error {
	return c.do(ctx, "increment procedure usage", http.MethodPost, "/procedures/"+url.PathEscape(code)+"/increment-usage", nil, nil, nil)
}

// LabTestDetail is the authoritative lab-test record fetched at submit time.
type LabTestDetail struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	BasePrice       float64 `json:"base_price"`
	SpecimenType    string  `json:"specimen_type"`
	FastingRequired bool    `json:"fasting_required"`
	TurnaroundHours int     `json:"turnaround_time_hours"`
	Description     string  `json:"description"`
}

func (c *Client) SearchLabTests(ctx context.Context, term string, limit int) ([]catalog.Option, error) {
	var records []LabTestDetail
	q := url.Values{"q": {term}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, "search lab tests", http.MethodGet, "/labtests/search", q, nil, &records); err != nil {
		return nil, err
	}

	options := make([]catalog.Option, 0, len(records))
	for _, r := range records {
		options = append(options, catalog.Option{
			Label:           r.Name,
			Value:           r.Code,
			Code:            r.Code,
			Name:            r.Name,
			Category:        r.Category,
			BasePrice:       r.BasePrice,
			SpecimenType:    r.SpecimenType,
			FastingRequired: r.FastingRequired,
			TurnaroundHours: r.TurnaroundHours,
			Description:     r.Description,
		})
	}
	return options, nil
}

func (c *Client) GetLabTest(ctx context.Context, code string) (*LabTestDetail, error) {
	var detail LabTestDetail
	if err := c.do(ctx, "get lab test", http.MethodGet, "/labtests/"+url.PathEscape(code), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) IncrementLabTestUsage(ctx context.Context, code string) error {
	return c.do(ctx, "increment lab test usage", http.MethodPost, "/labtests/"+url.PathEscape(code)+"/increment-usage", nil, nil, nil)
}

// PrescriptionItem is one medicine line on the wire.
type PrescriptionItem struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	MedicineType string `json:"medicine_type,omitempty"`
	Route        string `json:"route_of_administration,omitempty"`
	Duration     string `json:"duration"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
}

type RecommendedProcedure struct {
	Code              string  `json:"procedure_code"`
	Name              string  `json:"procedure_name"`
	Notes             string  `json:"notes,omitempty"`
	Cost              float64 `json:"cost"`
	Category          string  `json:"category"`
	DurationMinutes   int     `json:"duration_minutes"`
	InsuranceCoverage float64 `json:"insurance_coverage"`
}

type RecommendedLabTest struct {
	Code            string  `json:"lab_test_code"`
	Name            string  `json:"lab_test_name"`
	Notes           string  `json:"notes,omitempty"`
	Cost            float64 `json:"cost"`
	Category        string  `json:"category"`
	SpecimenType    string  `json:"specimen_type,omitempty"`
	FastingRequired bool    `json:"fasting_required"`
	TurnaroundHours int     `json:"turnaround_time_hours,omitempty"`
}

type PrescriptionPayload struct {
	AppointmentID                string                 `json:"appointment_id"`
	Diagnosis                    string                 `json:"diagnosis"`
	Notes                        string                 `json:"notes,omitempty"`
	Investigation                string                 `json:"investigation,omitempty"`
	PresentingComplaint          string                 `json:"presenting_complaint,omitempty"`
	HistoryOfPresentingComplaint string                 `json:"history_of_presenting_complaint,omitempty"`
	PrescriptionImage            string                 `json:"prescriptionImage,omitempty"`
	Items                        []PrescriptionItem     `json:"items"`
	RecommendedProcedures        []RecommendedProcedure `json:"recommendedProcedures"`
	RecommendedLabTests          []RecommendedLabTest   `json:"recommendedLabTests"`
	HasProcedures                bool                   `json:"has_procedures"`
	ProceduresStatus             string                 `json:"procedures_status"`
	HasLabTests                  bool                   `json:"has_lab_tests"`
	LabTestsStatus               string                 `json:"lab_tests_status"`
}

type PrescriptionReceipt struct {
	ID     string `json:"_id"`
	Number string `json:"prescription_number"`
}

func (c *Client) CreatePrescription(ctx context.Context, payload *PrescriptionPayload) (*PrescriptionReceipt, error) {
	var receipt PrescriptionReceipt
	if err := c.do(ctx, "create prescription", http.MethodPost, "/prescriptions", nil, payload, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) CompleteAppointment(ctx context.Context, appointmentID string) error {
	return c.do(ctx, "complete appointment", http.MethodPut, "/appointments/"+url.PathEscape(appointmentID)+"/complete", nil, nil, nil)
}

type salaryResult struct {
	Amount float64 `json:"amount"`
}

// CalculateAppointmentSalary asks the backend to compute and credit the
// practitioner's share for a completed appointment.
func (c *Client) CalculateAppointmentSalary(ctx context.Context, appointmentID string) (float64, error) {
	var result salaryResult
	if err := c.do(ctx, "calculate salary", http.MethodPost, "/salaries/calculate-appointment/"+url.PathEscape(appointmentID), nil, nil, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

const errorBodyLimit = 2048

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "error", start)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.observe(op, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		c.log.Warn("upstream request failed",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
		)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decoding response: %w", op, err)
		}
	}
	return nil
}

func (c *Client) observe(op, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
