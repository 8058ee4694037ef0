package records

import (
	"errors"
	"net/http"
)

// Domain errors for record storage.
var (
	ErrNotFound = errors.New("record not found")

	// ErrUnroutableCategory indicates the catalog declares no structured
	// table or semantic collection for the category. This is a
	// configuration bug, not an expected runtime state.
	ErrUnroutableCategory = errors.New("category has no storage routing")

	// ErrStorageUnavailable indicates a backend rejected the operation; the
	// owning request stays pending for retry.
	ErrStorageUnavailable = errors.New("storage backend unavailable")

	// ErrTimeout indicates a store call exceeded its deadline; the owning
	// request stays pending for retry.
	ErrTimeout = errors.New("storage operation timed out")

	// ErrDualWriteAborted indicates the semantic write failed after a
	// structured commit and the structured record was rolled back; the
	// owning request is failed with the cause retained.
	ErrDualWriteAborted = errors.New("dual write aborted and rolled back")
)

// MapHTTPStatus maps record storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnroutableCategory):
		return http.StatusInternalServerError
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrDualWriteAborted):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
