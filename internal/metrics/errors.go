package metrics

import (
	"errors"
	"net/http"
)

// ErrInvalidDimension is returned for an unknown top-N dimension.
var ErrInvalidDimension = errors.New("invalid dimension")

// MapHTTPStatus maps metrics errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidDimension) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
