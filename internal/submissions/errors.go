package submissions

import (
	"errors"
	"net/http"
)

// Domain errors for submission operations.
var (
	ErrNotFound          = errors.New("submission not found")
	ErrDuplicate         = errors.New("submission already exists")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrVersionMismatch   = errors.New("version does not belong to the submission's assignment")
)

// MapHTTPStatus maps submission domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidSubmission) || errors.Is(err, ErrVersionMismatch) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
