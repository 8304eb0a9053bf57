package reports

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scrapmetrics/pkg/storage"
)

// Domain errors for report operations.
var (
	ErrNotFound     = errors.New("report not found")
	ErrDuplicate    = errors.New("report already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
)

// MapHTTPStatus maps report domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
