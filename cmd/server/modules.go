package main

import (
	"github.com/JaimeStill/scrapmetrics/internal/api"
	"github.com/JaimeStill/scrapmetrics/internal/config"
	"github.com/JaimeStill/scrapmetrics/internal/infrastructure"
	"github.com/JaimeStill/scrapmetrics/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.HandleHealth(infra.Lifecycle)
	return router
}
