package reports

import (
	"errors"
	"net/http"

	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/detection"
)

// Domain errors for report operations.
var (
	ErrNotFound      = errors.New("report not found")
	ErrDuplicate     = errors.New("report already exists")
	ErrInvalidStatus = errors.New("claim is not queued for processing")
)

// MapHTTPStatus maps report domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidStatus) {
		return http.StatusConflict
	}
	if errors.Is(err, claims.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, detection.ErrEmptyBatch) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
