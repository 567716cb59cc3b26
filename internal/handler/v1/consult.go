package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/consult"
	"github.com/carehub/consult-api/internal/flags"
)

// ConsultHandler resolves which consultation view a client should render.
type ConsultHandler struct {
	vitals *flags.Store[bool]
	log    *zap.Logger
}

func NewConsultHandler(vitals *flags.Store[bool], log *zap.Logger) *ConsultHandler {
	return &ConsultHandler{vitals: vitals, log: log}
}

type viewState struct {
	View          string `json:"view"`
	AppointmentID string `json:"appointment_id,omitempty"`
	ShowVitals    bool   `json:"show_vitals"`
	ShowComposer  bool   `json:"show_composer"`
}

// View maps the requested tab onto a render state, one branch per variant.
// The vitals panel only exists on the live consultation and respects the
// shared toggle.
func (h *ConsultHandler) View(c *gin.Context) {
	view, err := consult.ParseView(c.Query("view"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if pa, ok := view.(consult.PastAppointments); ok {
		pa.AppointmentID = c.Query("appointment_id")
		view = pa
	}

	state := consult.Dispatch[viewState]{
		Current: func(consult.Current) viewState {
			return viewState{View: "current", ShowVitals: h.vitals.Get(), ShowComposer: true}
		},
		PastAppointments: func(v consult.PastAppointments) viewState {
			return viewState{View: "appointments", AppointmentID: v.AppointmentID}
		},
		PastPrescriptions: func(consult.PastPrescriptions) viewState {
			return viewState{View: "prescriptions"}
		},
		AISummary: func(consult.AISummary) viewState {
			return viewState{View: "summary"}
		},
	}.On(view)

	respondOK(c, state)
}
