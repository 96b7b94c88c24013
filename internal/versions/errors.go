package versions

import (
	"errors"
	"net/http"
)

// Domain errors for version operations.
var (
	ErrNotFound        = errors.New("version not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDuplicate       = errors.New("version already exists")
	ErrInvalidVersion  = errors.New("invalid version")
	ErrEmptyComment    = errors.New("comment has no text and no files")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
)

// MapHTTPStatus maps version domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCommentNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrEmptyComment) || errors.Is(err, ErrInvalidVersion) || errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
