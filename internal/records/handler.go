package records

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/scrapmetrics/pkg/formatting"
	"github.com/JaimeStill/scrapmetrics/pkg/handlers"
	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
	"github.com/JaimeStill/scrapmetrics/pkg/routes"
)

// Handler provides HTTP endpoints for record operations.
type Handler struct {
	sys           System
	source        Reloader
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	now           func() time.Time
}

// NewHandler creates a Handler. source is reloaded after each successful import.
func NewHandler(
	sys System,
	source Reloader,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		source:        source,
		logger:        logger.With("handler", "records"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// Routes returns the route group definition for record endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Routes: []routes.Route{
			{Method: "GET", Path: "", Handler: h.List},
			{Method: "POST", Path: "/import", Handler: h.Import},
		},
	}
}

// List returns a paginated list of stored records.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Import accepts a multipart CSV upload in the "file" field. Imports with
// error-severity issues are rejected with 422 and the issue list.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(
			w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: limit %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 0)),
		)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	recs, issues, err := Parse(file)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	issues = append(issues, Validate(recs, h.now())...)

	if HasErrors(issues) {
		h.logger.Warn("import rejected", "issues", len(issues))
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, ImportResult{Issues: issues})
		return
	}

	n, err := h.sys.Import(r.Context(), recs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result := ImportResult{Inserted: n, Issues: issues}
	if ds, err := h.source.Reload(r.Context()); err != nil {
		h.logger.Warn("dataset reload after import failed", "error", err)
	} else {
		result.Identity = ds.Identity()
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}
