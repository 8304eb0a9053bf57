package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/scrapmetrics/internal/config"
	"github.com/JaimeStill/scrapmetrics/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	logger *slog.Logger,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	patterns := routes.Register(
		mux,
		domain.Records.Handler(domain.Source, maxUpload).Routes(),
		domain.Reports.Handler(maxUpload).Routes(),
		domain.Dashboard.Handler(cfg.API.CORS.WebSocketOrigins()).Routes(),
	)

	logger.Debug("routes registered", "count", len(patterns), "patterns", patterns)
}
