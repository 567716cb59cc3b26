package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the hospital backend.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// UserMessage classifies an upstream failure into the message shown to the
// clinician. Transport-level failures (no status code) read as connectivity
// problems; everything else maps off the remote status.
func UserMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "Could not reach the hospital server. Check your connection and try again."
	}

	switch {
	case apiErr.StatusCode == http.StatusBadRequest:
		return "The prescription data failed validation. Please review the form and try again."
	case apiErr.StatusCode == http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case apiErr.StatusCode == http.StatusForbidden:
		return "You do not have permission to perform this action."
	case apiErr.StatusCode == http.StatusNotFound:
		return "Appointment not found. It may have been cancelled."
	case apiErr.StatusCode == http.StatusUnprocessableEntity:
		return "One or more selected items are invalid. Please reselect and try again."
	case apiErr.StatusCode >= 500:
		return "The hospital server encountered an error. Please try again shortly."
	default:
		return "Something went wrong while saving the prescription. Please try again."
	}
}
