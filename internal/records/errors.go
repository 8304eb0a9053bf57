package records

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scrapmetrics/pkg/repository"
)

// Domain errors for record operations.
var (
	ErrInvalidImport = errors.New("import rejected by validation")
	ErrEmptyImport   = errors.New("import contains no records")
	ErrInvalidFile   = errors.New("invalid import file")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrNotLoaded     = errors.New("dataset not loaded")
)

// MapHTTPStatus maps record domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidImport), errors.Is(err, repository.ErrConstraint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmptyImport), errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
