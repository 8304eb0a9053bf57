package api

import (
	"github.com/JaimeStill/scrapmetrics/internal/config"
	"github.com/JaimeStill/scrapmetrics/internal/dashboard"
	"github.com/JaimeStill/scrapmetrics/internal/infrastructure"
	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Metrics    metrics.Config
	Dashboard  dashboard.Options
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Metrics:    cfg.Metrics.Value(),
		Dashboard:  cfg.Dashboard.Options(),
	}
}
