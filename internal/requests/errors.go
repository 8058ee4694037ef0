package requests

import (
	"errors"
	"net/http"
)

// Domain errors for request operations.
var (
	ErrNotFound          = errors.New("request not found")
	ErrDuplicate         = errors.New("request already exists for content hash")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotResubmittable  = errors.New("only failed requests can be resubmitted")
	ErrNotCancellable    = errors.New("request is no longer cancellable")
)

// MapHTTPStatus maps request domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotResubmittable),
		errors.Is(err, ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
