package assignments

import (
	"errors"
	"net/http"
)

// Domain errors for assignment operations.
var (
	ErrNotFound          = errors.New("assignment not found")
	ErrDuplicate         = errors.New("assignment already exists")
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// MapHTTPStatus maps assignment domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidAssignment) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
