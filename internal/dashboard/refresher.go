package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// Snapshotter computes snapshots. System satisfies it.
type Snapshotter interface {
	Snapshot(ctx context.Context, spec period.Spec, ref time.Time) (*Snapshot, error)
}

// Result is a delivered refresh. Exactly one of Snapshot and Err is set.
type Result struct {
	Generation uint64
	Spec       period.Spec
	Snapshot   *Snapshot
	Err        error
}

type request struct {
	generation uint64
	spec       period.Spec
	ref        time.Time
}

// Refresher computes one view's snapshots one at a time and delivers only
// results whose generation is still the newest submitted, including at the
// moment of handoff. Queued requests that are already superseded are
// skipped. A running computation is not interrupted; its result is dropped.
type Refresher struct {
	snapshots Snapshotter
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// genMu guards generation and superseded. superseded is closed and
	// replaced on every Submit.
	genMu      sync.Mutex
	generation uint64
	superseded chan struct{}

	group      errgroup.Group
	queue      chan request
	results    chan Result
	dispatched chan struct{}

	submitMu sync.Mutex
	closed   bool

	closeOnce sync.Once
}

// NewRefresher starts a refresher. Cancelling ctx has the same effect as
// Close on delivery, but Close must still be called.
func NewRefresher(ctx context.Context, snapshots Snapshotter, logger *slog.Logger) *Refresher {
	ctx, cancel := context.WithCancel(ctx)
	r := &Refresher{
		snapshots:  snapshots,
		logger:     logger.With("system", "refresher"),
		ctx:        ctx,
		cancel:     cancel,
		superseded: make(chan struct{}),
		queue:      make(chan request, 16),
		results:    make(chan Result),
		dispatched: make(chan struct{}),
	}
	r.group.SetLimit(1)
	go r.dispatch()
	return r
}

// Submit queues a computation and returns its generation. Every earlier
// generation becomes stale. Submit returns ErrRefresherClosed after Close.
func (r *Refresher) Submit(spec period.Spec, ref time.Time) (uint64, error) {
	r.submitMu.Lock()
	defer r.submitMu.Unlock()

	if r.closed {
		return 0, ErrRefresherClosed
	}

	r.genMu.Lock()
	r.generation++
	gen := r.generation
	close(r.superseded)
	r.superseded = make(chan struct{})
	r.genMu.Unlock()

	r.queue <- request{generation: gen, spec: spec, ref: ref}
	return gen, nil
}

// Latest returns the newest submitted generation.
func (r *Refresher) Latest() uint64 {
	latest, _ := r.current()
	return latest
}

// Results delivers current results. It is closed after Close returns.
func (r *Refresher) Results() <-chan Result {
	return r.results
}

// Close stops accepting work, abandons undelivered results, waits for
// the in-flight computation, and closes Results.
func (r *Refresher) Close() {
	r.closeOnce.Do(func() {
		r.cancel()

		r.submitMu.Lock()
		r.closed = true
		close(r.queue)
		r.submitMu.Unlock()

		<-r.dispatched
		r.group.Wait()
		close(r.results)
	})
}

func (r *Refresher) current() (uint64, <-chan struct{}) {
	r.genMu.Lock()
	defer r.genMu.Unlock()
	return r.generation, r.superseded
}

func (r *Refresher) dispatch() {
	defer close(r.dispatched)
	for req := range r.queue {
		r.group.Go(func() error {
			if latest, _ := r.current(); req.generation < latest {
				r.logger.Debug("stale request skipped", "generation", req.generation, "latest", latest)
				return nil
			}

			snap, err := r.snapshots.Snapshot(r.ctx, req.spec, req.ref)
			r.deliver(Result{
				Generation: req.generation,
				Spec:       req.spec,
				Snapshot:   snap,
				Err:        err,
			})
			return nil
		})
	}
}

func (r *Refresher) deliver(res Result) {
	latest, superseded := r.current()
	if res.Generation < latest {
		r.logger.Debug("stale result dropped", "generation", res.Generation, "latest", latest)
		return
	}

	select {
	case r.results <- res:
	case <-superseded:
		r.logger.Debug("stale result dropped at handoff", "generation", res.Generation)
	case <-r.ctx.Done():
		r.logger.Debug("result abandoned", "generation", res.Generation)
	}
}
