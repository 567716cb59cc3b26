package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/composer"
	"github.com/carehub/consult-api/internal/config"
	"github.com/carehub/consult-api/internal/flags"
	"github.com/carehub/consult-api/pkg/auth"
	"github.com/carehub/consult-api/pkg/metrics"
)

type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	Metrics    *metrics.Collector
	JWTManager *auth.JWTManager
	Composer   *composer.Service
	Vitals     *flags.Store[bool]
}

// NewRouter assembles the HTTP surface. Health and metrics are unguarded;
// everything under /api/v1 requires a valid token, and submitting a
// prescription additionally requires a prescribing role.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(deps.Log))
	r.Use(Observe(deps.Metrics))
	r.Use(CORS(deps.Config.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	catalogHandler := NewCatalogHandler(deps.Composer, deps.Log)
	prescriptionHandler := NewPrescriptionHandler(deps.Composer, deps.Log)
	settingsHandler := NewSettingsHandler(deps.Vitals, deps.Log)
	consultHandler := NewConsultHandler(deps.Vitals, deps.Log)

	api := r.Group("/api/v1")
	api.Use(Authenticate(deps.JWTManager))
	{
		catalogs := api.Group("/catalog")
		{
			catalogs.GET("/medicines", catalogHandler.SearchMedicines)
			catalogs.GET("/procedures", catalogHandler.SearchProcedures)
			catalogs.GET("/labtests", catalogHandler.SearchLabTests)
		}

		api.POST("/appointments/:id/prescription", RequirePrescriber(), prescriptionHandler.Submit)

		api.GET("/settings/vitals", settingsHandler.GetVitals)
		api.PUT("/settings/vitals", settingsHandler.PutVitals)

		api.GET("/consultations/:id/view", consultHandler.View)
	}

	return r
}
