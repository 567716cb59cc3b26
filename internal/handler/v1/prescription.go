package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/composer"
)

// PrescriptionHandler runs the submission workflow for a consultation's
// drafted prescription.
type PrescriptionHandler struct {
	svc *composer.Service
	log *zap.Logger
}

func NewPrescriptionHandler(svc *composer.Service, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc, log: log}
}

// Submit validates and saves the draft against the appointment in the
// path. Validation failures return the per-row detail without touching the
// backend; upstream failures surface with the clinician-facing message.
func (h *PrescriptionHandler) Submit(c *gin.Context) {
	appointmentID := c.Param("id")
	if appointmentID == "" {
		respondError(c, http.StatusBadRequest, "appointment id is required")
		return
	}

	draft := composer.NewDraft()
	if !bindJSON(c, draft) {
		return
	}
	if len(draft.Medicines) == 0 {
		draft.Medicines = []composer.MedicineRow{{}}
	}

	outcome, err := h.svc.Submit(c.Request.Context(), appointmentID, draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, outcome, outcome.Message)
}
