package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
	"github.com/JaimeStill/scrapmetrics/pkg/cache"
)

// Datasets provides the current dataset snapshot.
type Datasets interface {
	Current(ctx context.Context) (*metrics.Dataset, error)
}

// System defines the public contract for dashboard composition.
type System interface {
	Handler(origins []string) *Handler

	// Snapshot computes, or returns the memoized, full view of spec
	// resolved against ref.
	Snapshot(ctx context.Context, spec period.Spec, ref time.Time) (*Snapshot, error)
	// Report returns the KPI and comparison of spec.
	Report(ctx context.Context, spec period.Spec, ref time.Time) (*Report, error)
	// Top ranks the contributors of spec's current range by dimension.
	Top(ctx context.Context, spec period.Spec, ref time.Time, dim metrics.Dimension, n int) ([]metrics.Contributor, error)
	// Invalidate drops every memoized snapshot computed from source.
	Invalidate(source string) int
	// Refresher starts a refresher bound to ctx that computes snapshots
	// through this system.
	Refresher(ctx context.Context) *Refresher
}

type dashboard struct {
	datasets  Datasets
	config    metrics.Config
	options   Options
	snapshots *cache.Cache[*Snapshot]
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a dashboard system over datasets. cfg is passed into every
// engine call.
func New(datasets Datasets, cfg metrics.Config, opts Options, logger *slog.Logger) System {
	return &dashboard{
		datasets:  datasets,
		config:    cfg,
		options:   opts,
		snapshots: cache.New[*Snapshot](),
		logger:    logger.With("system", "dashboard"),
		now:       time.Now,
	}
}

func (d *dashboard) Handler(origins []string) *Handler {
	return NewHandler(d, d.logger, origins)
}

func (d *dashboard) Refresher(ctx context.Context) *Refresher {
	return NewRefresher(ctx, d, d.logger)
}

func (d *dashboard) Invalidate(source string) int {
	n := d.snapshots.Invalidate(source)
	if n > 0 {
		d.logger.Info("snapshots invalidated", "source", source, "count", n)
	}
	return n
}

func (d *dashboard) Snapshot(ctx context.Context, spec period.Spec, ref time.Time) (*Snapshot, error) {
	ds, err := d.datasets.Current(ctx)
	if err != nil {
		return nil, err
	}

	concrete, err := d.concrete(ds, spec, ref)
	if err != nil {
		return nil, err
	}

	key := cache.Key{Spec: concrete.Fingerprint(), Source: ds.Identity()}
	snap, hit, err := d.snapshots.GetOrCompute(key, func() (*Snapshot, error) {
		return d.compute(ctx, ds, concrete)
	})
	if err != nil {
		d.logger.Error("snapshot failed", "key", key.String(), "error", err)
		return nil, err
	}

	d.logger.Debug("snapshot", "key", key.String(), "hit", hit)
	return snap, nil
}

func (d *dashboard) Report(ctx context.Context, spec period.Spec, ref time.Time) (*Report, error) {
	snap, err := d.Snapshot(ctx, spec, ref)
	if err != nil {
		return nil, err
	}
	return snap.Report(), nil
}

func (d *dashboard) Top(
	ctx context.Context,
	spec period.Spec,
	ref time.Time,
	dim metrics.Dimension,
	n int,
) ([]metrics.Contributor, error) {
	ds, err := d.datasets.Current(ctx)
	if err != nil {
		return nil, err
	}

	concrete, err := d.concrete(ds, spec, ref)
	if err != nil {
		return nil, err
	}

	r, err := period.Bounds(concrete)
	if err != nil {
		return nil, err
	}

	return metrics.TopN(ds, r, dim, n), nil
}

// concrete resolves relative specs. An empty last complete week walks back
// up to LookbackWeeks weeks to the newest week holding records and keeps
// the original week when none is found.
func (d *dashboard) concrete(ds *metrics.Dataset, spec period.Spec, ref time.Time) (period.Spec, error) {
	concrete, err := period.Concrete(spec, ref)
	if err != nil {
		return nil, err
	}
	if spec.Kind() != period.KindLastComplete {
		return concrete, nil
	}

	candidate := concrete
	for range d.options.LookbackWeeks + 1 {
		r, err := period.Bounds(candidate)
		if err != nil {
			return nil, err
		}
		if ds.Has(r) {
			if candidate != concrete {
				d.logger.Debug("last complete week empty, walked back",
					"from", concrete.Fingerprint(), "to", candidate.Fingerprint())
			}
			return candidate, nil
		}
		if candidate, err = period.Previous(candidate); err != nil {
			return nil, err
		}
	}
	return concrete, nil
}

func (d *dashboard) compute(ctx context.Context, ds *metrics.Dataset, spec period.Spec) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := period.Resolve(spec, d.now())
	if err != nil {
		return nil, err
	}

	targets := d.config.Targets
	th := d.config.Thresholds
	target := targets.For(res.Spec)

	snap := &Snapshot{
		Period:      res,
		Source:      ds.Identity(),
		KPI:         metrics.Aggregate(ds, res.Current, target, res.Label),
		GeneratedAt: d.now(),
	}

	var previous *metrics.KPI

	var g errgroup.Group

	g.Go(func() error {
		previous = metrics.Aggregate(ds, res.Previous, targets.For(res.PreviousSpec), res.PreviousLabel)
		return nil
	})

	g.Go(func() error {
		if unit, ok := period.UnitOf(res.Spec); ok {
			trend, err := metrics.TrendOf(ds, res.Spec, d.options.TrendLength(unit), targets)
			if err != nil {
				return fmt.Errorf("trend: %w", err)
			}
			snap.Trend = trend
			return nil
		}
		snap.Trend = metrics.SegmentTrend(ds, res.Current, d.options.CustomSegments, target)
		return nil
	})

	g.Go(func() error {
		snap.TopItems = metrics.TopN(ds, res.Current, metrics.DimensionItem, d.options.TopN)
		return nil
	})

	g.Go(func() error {
		snap.TopLocations = metrics.TopN(ds, res.Current, metrics.DimensionLocation, d.options.TopN)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Comparison = metrics.Compare(snap.KPI, previous, th)
	snap.Shape = metrics.Classify(snap.Trend, th)
	snap.Alerts = metrics.Evaluate(snap.KPI, snap.Trend, th)
	return snap, nil
}
