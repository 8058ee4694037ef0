package validate

import (
	"errors"
	"net/http"
)

// Domain errors for assignment validation.
var (
	// ErrValidationFailed indicates a hard rule failed for the assignment.
	ErrValidationFailed = errors.New("validation failed")

	// ErrConstraintViolation indicates the proposed stored output contains
	// content absent from the input segment.
	ErrConstraintViolation = errors.New("containment constraint violated")
)

// MapHTTPStatus translates validation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrConstraintViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
