package composer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/domain/catalog"
	"github.com/carehub/consult-api/internal/upstream"
	"github.com/carehub/consult-api/pkg/metrics"
)

// Backend is the slice of the hospital API the composer drives.
type Backend interface {
	SearchMedicines(ctx context.Context, term string, limit int) ([]catalog.Option, error)
	SearchProcedures(ctx context.Context, term string, limit int) ([]catalog.Option, error)
	SearchLabTests(ctx context.Context, term string, limit int) ([]catalog.Option, error)
	GetProcedure(ctx context.Context, code string) (*upstream.ProcedureDetail, error)
	IncrementProcedureUsage(ctx context.Context, code string) error
	GetLabTest(ctx context.Context, code string) (*upstream.LabTestDetail, error)
	IncrementLabTestUsage(ctx context.Context, code string) error
	CreatePrescription(ctx context.Context, payload *upstream.PrescriptionPayload) (*upstream.PrescriptionReceipt, error)
	CompleteAppointment(ctx context.Context, appointmentID string) error
	CalculateAppointmentSalary(ctx context.Context, appointmentID string) (float64, error)
}

// Phase is the submission attempt's position in its lifecycle. Fatal
// failures return to Idle with the draft intact.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseValidating      Phase = "validating"
	PhaseResolving       Phase = "resolving"
	PhaseSaving          Phase = "saving"
	PhaseCompleting      Phase = "completing"
	PhaseSalaryCrediting Phase = "salary_crediting"
	PhaseSucceeded       Phase = "succeeded"
)

// Fallback fields substituted when a procedure/lab-test detail lookup
// fails. The row is still included, at zero cost.
const (
	fallbackCategory        = "Other"
	fallbackDurationMinutes = 30
)

type Service struct {
	backend     Backend
	log         *zap.Logger
	metrics     *metrics.Collector
	tracer      trace.Tracer
	searchLimit int

	mu    sync.Mutex
	phase Phase
}

func NewService(backend Backend, log *zap.Logger, m *metrics.Collector, searchLimit int) *Service {
	if searchLimit <= 0 {
		searchLimit = catalog.MaxResults
	}
	return &Service{
		backend:     backend,
		log:         log,
		metrics:     m,
		tracer:      otel.Tracer("composer"),
		searchLimit: searchLimit,
		phase:       PhaseIdle,
	}
}

func (s *Service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Service) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Outcome summarizes a successful submission.
type Outcome struct {
	PrescriptionID     string  `json:"prescription_id"`
	PrescriptionNumber string  `json:"prescription_number"`
	MedicineCount      int     `json:"medicine_count"`
	ProcedureTotal     float64 `json:"procedure_total"`
	LabTestTotal       float64 `json:"lab_test_total"`
	SalaryAmount       float64 `json:"salary_amount,omitempty"`
	SalaryCredited     bool    `json:"salary_credited"`
	Message            string  `json:"message"`
}

// Submit runs the save workflow: validate, resolve authoritative pricing
// for procedure and lab-test rows (concurrently, with per-row fallback),
// create the prescription, complete the appointment, then attempt the
// salary credit. The first fatal failure aborts with the draft untouched;
// per-row lookups and the salary credit degrade without failing the
// attempt. On success the draft is reset.
func (s *Service) Submit(ctx context.Context, appointmentID string, d *Draft) (*Outcome, error) {
	attemptID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "prescription.submit", trace.WithAttributes(
		attribute.String("appointment.id", appointmentID),
		attribute.String("attempt.id", attemptID),
	))
	defer span.End()

	s.setPhase(PhaseValidating)
	if verr := Validate(d); verr != nil {
		s.setPhase(PhaseIdle)
		return nil, verr
	}

	items := submittableMedicines(d)

	s.setPhase(PhaseResolving)
	span.AddEvent("resolving rows")
	procedures, labTests := s.resolveRows(ctx, d)

	s.setPhase(PhaseSaving)
	payload := &upstream.PrescriptionPayload{
		AppointmentID:                appointmentID,
		Diagnosis:                    strings.TrimSpace(d.Diagnosis),
		Notes:                        d.Notes,
		Investigation:                d.Investigation,
		PresentingComplaint:          d.PresentingComplaint,
		HistoryOfPresentingComplaint: d.HistoryOfPresentingComplaint,
		PrescriptionImage:            d.PrescriptionImage,
		Items:                        items,
		RecommendedProcedures:        procedures,
		RecommendedLabTests:          labTests,
		HasProcedures:                len(procedures) > 0,
		ProceduresStatus:             listStatus(len(procedures)),
		HasLabTests:                  len(labTests) > 0,
		LabTestsStatus:               listStatus(len(labTests)),
	}

	span.AddEvent("creating prescription")
	receipt, err := s.backend.CreatePrescription(ctx, payload)
	if err != nil {
		s.setPhase(PhaseIdle)
		s.log.Error("prescription create failed",
			zap.String("appointment_id", appointmentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	s.setPhase(PhaseCompleting)
	span.AddEvent("completing appointment")
	if err := s.backend.CompleteAppointment(ctx, appointmentID); err != nil {
		s.setPhase(PhaseIdle)
		s.log.Error("appointment completion failed",
			zap.String("appointment_id", appointmentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("completing appointment: %w", err)
	}

	// Salary credit is defined over a completed appointment, so it runs
	// strictly after completion. Its failure never fails the submission.
	s.setPhase(PhaseSalaryCrediting)
	span.AddEvent("crediting salary")
	var salaryAmount float64
	salaryCredited := false
	if amount, err := s.backend.CalculateAppointmentSalary(ctx, appointmentID); err != nil {
		if s.metrics != nil {
			s.metrics.SalaryCreditFailures.Inc()
		}
		s.log.Warn("salary credit failed after appointment completion",
			zap.String("appointment_id", appointmentID),
			zap.Error(err),
		)
	} else {
		salaryAmount = amount
		salaryCredited = true
	}

	if s.metrics != nil {
		s.metrics.PrescriptionsSubmitted.Inc()
	}

	outcome := &Outcome{
		PrescriptionID:     receipt.ID,
		PrescriptionNumber: receipt.Number,
		MedicineCount:      len(items),
		ProcedureTotal:     billingTotal(procedures),
		LabTestTotal:       labBillingTotal(labTests),
		SalaryAmount:       salaryAmount,
		SalaryCredited:     salaryCredited,
	}
	outcome.Message = successMessage(outcome)

	d.Reset()
	s.setPhase(PhaseSucceeded)

	s.log.Info("prescription submitted",
		zap.String("appointment_id", appointmentID),
		zap.String("prescription_id", receipt.ID),
		zap.Int("medicines", outcome.MedicineCount),
		zap.Bool("salary_credited", salaryCredited),
	)
	return outcome, nil
}

// submittableMedicines filters to rows carrying both a name and a dosage.
func submittableMedicines(d *Draft) []upstream.PrescriptionItem {
	items := make([]upstream.PrescriptionItem, 0, len(d.Medicines))
	for _, row := range d.Medicines {
		if strings.TrimSpace(row.MedicineName) == "" || strings.TrimSpace(row.Dosage) == "" {
			continue
		}
		items = append(items, upstream.PrescriptionItem{
			MedicineName: row.MedicineName,
			Dosage:       row.Dosage,
			MedicineType: row.MedicineType,
			Route:        row.Route,
			Duration:     row.Duration,
			Frequency:    row.Frequency,
			Instructions: row.Instructions,
			Quantity:     row.Quantity,
		})
	}
	return items
}

// resolveRows fetches authoritative details for every procedure and
// lab-test row. All rows resolve concurrently; each row is internally
// sequential (fetch, then usage increment) and its failure is isolated to
// itself.
func (s *Service) resolveRows(ctx context.Context, d *Draft) ([]upstream.RecommendedProcedure, []upstream.RecommendedLabTest) {
	procRows := make([]ProcedureRow, 0, len(d.Procedures))
	for _, row := range d.Procedures {
		// Rows with neither code nor name are dropped silently.
		if row.Code == "" && strings.TrimSpace(row.Name) == "" {
			continue
		}
		procRows = append(procRows, row)
	}

	labRows := make([]LabTestRow, 0, len(d.LabTests))
	for _, row := range d.LabTests {
		if row.Code == "" && strings.TrimSpace(row.Name) == "" {
			continue
		}
		labRows = append(labRows, row)
	}

	procedures := make([]upstream.RecommendedProcedure, len(procRows))
	labTests := make([]upstream.RecommendedLabTest, len(labRows))

	var wg sync.WaitGroup
	for i, row := range procRows {
		wg.Add(1)
		go func(i int, row ProcedureRow) {
			defer wg.Done()
			procedures[i] = s.resolveProcedure(ctx, row)
		}(i, row)
	}
	for i, row := range labRows {
		wg.Add(1)
		go func(i int, row LabTestRow) {
			defer wg.Done()
			labTests[i] = s.resolveLabTest(ctx, row)
		}(i, row)
	}
	wg.Wait()

	return procedures, labTests
}

func (s *Service) resolveProcedure(ctx context.Context, row ProcedureRow) upstream.RecommendedProcedure {
	if row.Code == "" {
		return upstream.RecommendedProcedure{
			Name:     row.Name,
			Notes:    row.Notes,
			Category: row.Category,
		}
	}

	detail, err := s.backend.GetProcedure(ctx, row.Code)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ResolutionFallbacks.WithLabelValues("procedure").Inc()
		}
		s.log.Warn("procedure lookup failed, using zero-cost fallback",
			zap.String("code", row.Code),
			zap.Error(err),
		)
		return upstream.RecommendedProcedure{
			Code:            row.Code,
			Name:            row.Name,
			Notes:           row.Notes,
			Cost:            0,
			Category:        fallbackCategory,
			DurationMinutes: fallbackDurationMinutes,
		}
	}

	// Usage counting is fire-and-forget; a failure is logged and ignored.
	if err := s.backend.IncrementProcedureUsage(ctx, row.Code); err != nil {
		s.log.Warn("procedure usage increment failed", zap.String("code", row.Code), zap.Error(err))
	}

	return upstream.RecommendedProcedure{
		Code:              detail.Code,
		Name:              detail.Name,
		Notes:             row.Notes,
		Cost:              detail.BasePrice,
		Category:          detail.Category,
		DurationMinutes:   detail.DurationMinutes,
		InsuranceCoverage: detail.InsuranceCoverage,
	}
}

func (s *Service) resolveLabTest(ctx context.Context, row LabTestRow) upstream.RecommendedLabTest {
	if row.Code == "" {
		return upstream.RecommendedLabTest{
			Name:     row.Name,
			Notes:    row.Notes,
			Category: row.Category,
		}
	}

	detail, err := s.backend.GetLabTest(ctx, row.Code)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ResolutionFallbacks.WithLabelValues("lab_test").Inc()
		}
		s.log.Warn("lab test lookup failed, using zero-cost fallback",
			zap.String("code", row.Code),
			zap.Error(err),
		)
		return upstream.RecommendedLabTest{
			Code:     row.Code,
			Name:     row.Name,
			Notes:    row.Notes,
			Cost:     0,
			Category: fallbackCategory,
		}
	}

	if err := s.backend.IncrementLabTestUsage(ctx, row.Code); err != nil {
		s.log.Warn("lab test usage increment failed", zap.String("code", row.Code), zap.Error(err))
	}

	return upstream.RecommendedLabTest{
		Code:            detail.Code,
		Name:            detail.Name,
		Notes:           row.Notes,
		Cost:            detail.BasePrice,
		Category:        detail.Category,
		SpecimenType:    detail.SpecimenType,
		FastingRequired: detail.FastingRequired,
		TurnaroundHours: detail.TurnaroundHours,
	}
}

func listStatus(n int) string {
	if n > 0 {
		return "pending"
	}
	return "none"
}

func billingTotal(rows []upstream.RecommendedProcedure) float64 {
	var total float64
	for _, r := range rows {
		total += r.Cost
	}
	return total
}

func labBillingTotal(rows []upstream.RecommendedLabTest) float64 {
	var total float64
	for _, r := range rows {
		total += r.Cost
	}
	return total
}

// successMessage aggregates the attempt into the single line shown to the
// clinician.
func successMessage(o *Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prescription %s saved. %d medicine(s) prescribed.", o.PrescriptionNumber, o.MedicineCount)
	if o.ProcedureTotal > 0 {
		fmt.Fprintf(&b, " Procedures billed: %.2f.", o.ProcedureTotal)
	}
	if o.LabTestTotal > 0 {
		fmt.Fprintf(&b, " Lab tests billed: %.2f.", o.LabTestTotal)
	}
	if o.SalaryCredited {
		fmt.Fprintf(&b, " Salary credited: %.2f.", o.SalaryAmount)
	}
	return b.String()
}
