package semantic

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates no document exists for the given link id.
	ErrNotFound = errors.New("semantic document not found")
	// ErrUnknownCollection indicates the collection was never declared in routing.
	ErrUnknownCollection = errors.New("unknown semantic collection")
	// ErrInvalidCollection indicates the collection name is not a valid identifier.
	ErrInvalidCollection = errors.New("invalid semantic collection name")
)

// MapHTTPStatus maps semantic store errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnknownCollection) || errors.Is(err, ErrInvalidCollection) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
