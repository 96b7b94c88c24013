package review

import (
	"errors"
	"net/http"

	"github.com/IonMich/instructor-pilot/internal/clustering"
	"github.com/IonMich/instructor-pilot/internal/submissions"
	"github.com/IonMich/instructor-pilot/internal/versions"
)

// Domain errors for review session operations.
var (
	ErrNotFound          = errors.New("review target not found")
	ErrSessionNotFound   = errors.New("review session not open")
	ErrAlreadyInProgress = errors.New("reassignment already in progress")
	ErrNoTarget          = errors.New("no target version selected")
	ErrNoActiveOutlier   = errors.New("no active outlier submission")
	ErrEmptyPayload      = errors.New("comment payload is empty after filtering")
	ErrInvalidPage       = errors.New("page out of range")
	ErrEmptyModel        = errors.New("no clustering result to review")
)

// MapHTTPStatus maps review errors to appropriate HTTP status codes.
// Clustering transport failures surface as bad gateway.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSessionNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrAlreadyInProgress) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNoTarget) ||
		errors.Is(err, ErrNoActiveOutlier) ||
		errors.Is(err, ErrEmptyPayload) ||
		errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrEmptyModel) {
		return http.StatusBadRequest
	}
	if errors.Is(err, clustering.ErrUnavailable) || errors.Is(err, clustering.ErrInvalidResponse) {
		return http.StatusBadGateway
	}

	// Backend failures keep their own domain's mapping.
	if status := versions.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := submissions.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}

	return http.StatusInternalServerError
}
