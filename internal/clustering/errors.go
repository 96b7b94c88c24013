package clustering

import (
	"errors"
	"net/http"
)

// Errors surfaced by the clustering client.
var (
	ErrUnavailable     = errors.New("clustering service unavailable")
	ErrInvalidResponse = errors.New("invalid clustering response")
	ErrInvalidRequest  = errors.New("invalid clustering request")
)

// MapHTTPStatus maps clustering client errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInvalidResponse) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
