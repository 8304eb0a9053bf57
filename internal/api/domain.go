package api

import (
	"github.com/JaimeStill/scrapmetrics/internal/dashboard"
	"github.com/JaimeStill/scrapmetrics/internal/records"
	"github.com/JaimeStill/scrapmetrics/internal/reports"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Records   records.System
	Reports   reports.System
	Dashboard dashboard.System
	Source    *records.Source
}

// NewDomain creates all domain systems from the API runtime. The dataset
// source reads production records through the records system, and every
// reload drops dashboard snapshots computed from the previous dataset.
func NewDomain(runtime *Runtime) *Domain {
	recordsSystem := records.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	source := records.NewSource(recordsSystem, runtime.Logger)

	reportsSystem := reports.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	dashboardSystem := dashboard.New(
		source,
		runtime.Metrics,
		runtime.Dashboard,
		runtime.Logger,
	)

	source.OnReload(func(stale string) {
		dropped := dashboardSystem.Invalidate(stale)
		runtime.Logger.Info("dataset reloaded", "stale", stale, "dropped", dropped)
	})

	return &Domain{
		Records:   recordsSystem,
		Reports:   reportsSystem,
		Dashboard: dashboardSystem,
		Source:    source,
	}
}
