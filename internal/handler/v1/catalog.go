package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/composer"
	"github.com/carehub/consult-api/internal/domain/catalog"
)

// CatalogHandler serves the ranked typeahead searches. Results come from
// the upstream catalogs and are re-ranked here so clients always see the
// best phrase matches first, capped at the ranker's limit.
type CatalogHandler struct {
	svc *composer.Service
	log *zap.Logger
}

func NewCatalogHandler(svc *composer.Service, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

func (h *CatalogHandler) SearchMedicines(c *gin.Context) {
	h.search(c, h.svc.SearchMedicines)
}

func (h *CatalogHandler) SearchProcedures(c *gin.Context) {
	h.search(c, h.svc.SearchProcedures)
}

func (h *CatalogHandler) SearchLabTests(c *gin.Context) {
	h.search(c, h.svc.SearchLabTests)
}

func (h *CatalogHandler) search(c *gin.Context, fn func(context.Context, string) ([]catalog.Option, error)) {
	options, err := fn(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, options)
}
