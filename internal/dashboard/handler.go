package dashboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
	"github.com/JaimeStill/scrapmetrics/pkg/handlers"
	"github.com/JaimeStill/scrapmetrics/pkg/routes"
)

// Handler provides HTTP endpoints for dashboard views.
type Handler struct {
	sys     System
	logger  *slog.Logger
	origins []string
	now     func() time.Time
}

// NewHandler creates a Handler over sys. origins lists the host patterns
// allowed to open the stream from another origin.
func NewHandler(sys System, logger *slog.Logger, origins []string) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "dashboard"),
		origins: origins,
		now:     time.Now,
	}
}

// Routes returns the route group definition for dashboard endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/dashboard",
		Routes: []routes.Route{
			{Method: "GET", Path: "", Handler: h.Snapshot},
			{Method: "GET", Path: "/report", Handler: h.Report},
			{Method: "GET", Path: "/top", Handler: h.Top},
			{Method: "GET", Path: "/stream", Handler: h.Stream},
		},
	}
}

// Snapshot returns the full view of the requested period.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	spec, ref, err := h.period(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	snap, err := h.sys.Snapshot(r.Context(), spec, ref)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// Report returns the KPI and comparison of the requested period.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	spec, ref, err := h.period(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rep, err := h.sys.Report(r.Context(), spec, ref)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rep)
}

// Top returns the top contributors by dimension (item or location, default
// item). n defaults to 10.
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	spec, ref, err := h.period(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	q := r.URL.Query()

	dim := metrics.DimensionItem
	if raw := q.Get("dimension"); raw != "" {
		if dim, err = metrics.ParseDimension(raw); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	n := 10
	if raw := q.Get("n"); raw != "" {
		if n, err = strconv.Atoi(raw); err != nil || n < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest,
				fmt.Errorf("%w: n must be a positive integer", ErrInvalidRequest))
			return
		}
	}

	top, err := h.sys.Top(r.Context(), spec, ref, dim, n)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, top)
}

func (h *Handler) period(r *http.Request) (period.Spec, time.Time, error) {
	req := PeriodRequestFromQuery(r.URL.Query())
	spec, err := req.Spec()
	if err != nil {
		return nil, time.Time{}, err
	}
	ref, err := req.RefTime(h.now())
	if err != nil {
		return nil, time.Time{}, err
	}
	return spec, ref, nil
}
