package review

import (
	"errors"
	"net/http"
)

// Domain errors for review operations.
var (
	ErrNotFound        = errors.New("review item not found")
	ErrAlreadyClaimed  = errors.New("review item already claimed")
	ErrNotClaimed      = errors.New("review item must be claimed before resolution")
	ErrInvalidDecision = errors.New("invalid review decision")
)

// MapHTTPStatus maps review domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyClaimed), errors.Is(err, ErrNotClaimed):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDecision):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
