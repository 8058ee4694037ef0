package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound reports a blob that does not exist in the container.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey reports an empty storage key.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey reports a storage key carrying a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// MapHTTPStatus translates storage errors into HTTP status codes for
// handlers that surface blob operations directly.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
