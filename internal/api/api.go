// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/scrapmetrics/internal/config"
	"github.com/JaimeStill/scrapmetrics/internal/infrastructure"
	"github.com/JaimeStill/scrapmetrics/pkg/middleware"
	"github.com/JaimeStill/scrapmetrics/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The initial dataset load is registered as a lifecycle startup hook.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime.Logger)

	domain.Source.Start(runtime.Lifecycle)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.RateLimit(&cfg.API.RateLimit))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
