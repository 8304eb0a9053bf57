package records

import (
	"context"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
)

// System defines the public contract for record operations. It doubles
// as the Loader behind the service's dataset Source.
type System interface {
	Loader

	Handler(source Reloader, maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Row], error)

	Import(ctx context.Context, recs []metrics.Record) (int, error)
}

// Reloader refreshes the served dataset after a write.
type Reloader interface {
	Reload(ctx context.Context) (*metrics.Dataset, error)
}
