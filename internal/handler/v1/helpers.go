package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carehub/consult-api/internal/composer"
	"github.com/carehub/consult-api/internal/upstream"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ValidationErrorResponse carries the top-level message plus per-row field
// errors, keyed by row index, so the client can highlight rows inline.
type ValidationErrorResponse struct {
	Error      string           `json:"error"`
	Medicines  map[int][]string `json:"medicines,omitempty"`
	Procedures map[int][]string `json:"procedures,omitempty"`
	LabTests   map[int][]string `json:"lab_tests,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError maps a composer or upstream failure onto this API's
// status space. Upstream statuses that indicate a caller problem pass
// through; upstream 5xx and transport failures surface as 502 since the
// fault is behind us, not here.
func respondServiceError(c *gin.Context, err error) {
	var verr *composer.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:      verr.Message,
			Medicines:  verr.Medicines,
			Procedures: verr.Procedures,
			LabTests:   verr.LabTests,
		})
		return
	}

	var apiErr *upstream.APIError
	if !errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: upstream.UserMessage(err)})
		return
	}

	status := http.StatusBadGateway
	switch apiErr.StatusCode {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusUnprocessableEntity:
		status = apiErr.StatusCode
	}
	c.JSON(status, ErrorResponse{Error: upstream.UserMessage(err)})
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}
