package syncer

import (
	"errors"
	"net/http"
)

// Domain errors for record synchronization.
var (
	// ErrOrphanLink indicates a storage mapping whose structured side no
	// longer exists.
	ErrOrphanLink = errors.New("storage mapping is orphaned")

	ErrNotFound = errors.New("no mappings for request")
)

// MapHTTPStatus maps sync errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOrphanLink):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
