package dashboard

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
	"github.com/JaimeStill/scrapmetrics/internal/records"
)

// Dashboard errors.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrRefresherClosed = errors.New("refresher closed")
)

// MapHTTPStatus maps dashboard errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, period.ErrInvalidPeriod),
		errors.Is(err, metrics.ErrInvalidDimension),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
