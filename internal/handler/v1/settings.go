package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/flags"
)

// SettingsHandler exposes the shared console toggles. Today that is the
// vitals panel flag; subscribers inside the process observe every change.
type SettingsHandler struct {
	vitals *flags.Store[bool]
	log    *zap.Logger
}

func NewSettingsHandler(vitals *flags.Store[bool], log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{vitals: vitals, log: log}
}

type vitalsSetting struct {
	Enabled bool `json:"enabled"`
}

func (h *SettingsHandler) GetVitals(c *gin.Context) {
	respondOK(c, vitalsSetting{Enabled: h.vitals.Get()})
}

func (h *SettingsHandler) PutVitals(c *gin.Context) {
	var req vitalsSetting
	if !bindJSON(c, &req) {
		return
	}
	h.vitals.Set(req.Enabled)
	h.log.Info("vitals setting changed", zap.Bool("enabled", req.Enabled))
	respondOK(c, req)
}
