package period

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidPeriod is the sentinel matched by every InvalidPeriodError.
var ErrInvalidPeriod = errors.New("invalid period")

// InvalidPeriodError describes a malformed period specification.
type InvalidPeriodError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("%s: %s %v %s", ErrInvalidPeriod, e.Field, e.Value, e.Reason)
}

func (e *InvalidPeriodError) Unwrap() error {
	return ErrInvalidPeriod
}

// MapHTTPStatus maps period errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidPeriod) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func invalid(field string, value any, reason string) error {
	return &InvalidPeriodError{Field: field, Value: value, Reason: reason}
}
