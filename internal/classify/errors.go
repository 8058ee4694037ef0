package classify

import (
	"errors"
	"net/http"
)

// Domain errors for classification.
var (
	// ErrInputEmpty indicates the segment carried no classifiable content.
	ErrInputEmpty = errors.New("segment input is empty")

	// ErrNoCategoryMatch indicates no category scored above the primary
	// confidence threshold.
	ErrNoCategoryMatch = errors.New("no category match above threshold")
)

// MapHTTPStatus translates classification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInputEmpty):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoCategoryMatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
