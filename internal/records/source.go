package records

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/pkg/lifecycle"
)

// Loader produces dataset snapshots. Identity must be cheap relative to
// Load and change whenever the underlying records change.
type Loader interface {
	Identity(ctx context.Context) (string, error)
	Load(ctx context.Context) (*metrics.Dataset, error)
}

// Source holds the current dataset snapshot and swaps it when the loader
// reports a new identity.
type Source struct {
	loader  Loader
	logger  *slog.Logger
	current atomic.Pointer[metrics.Dataset]

	mu        sync.Mutex
	listeners []func(stale string)
}

// NewSource creates a Source backed by loader. No data is loaded until
// Current, Reload, or Start is called.
func NewSource(loader Loader, logger *slog.Logger) *Source {
	return &Source{
		loader: loader,
		logger: logger.With("system", "source"),
	}
}

// OnReload registers fn to run after a snapshot replaces an older one.
// fn receives the identity of the replaced snapshot.
func (s *Source) OnReload(fn func(stale string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Current returns the latest snapshot, reloading first when the loader
// reports a different identity.
func (s *Source) Current(ctx context.Context) (*metrics.Dataset, error) {
	id, err := s.loader.Identity(ctx)
	if err != nil {
		if ds := s.current.Load(); ds != nil {
			s.logger.Warn("identity check failed, serving cached dataset", "error", err)
			return ds, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrNotLoaded, err)
	}

	if ds := s.current.Load(); ds != nil && ds.Identity() == id {
		return ds, nil
	}

	return s.Reload(ctx)
}

// Reload loads a fresh snapshot unconditionally and notifies listeners
// when the identity changed.
func (s *Source) Reload(ctx context.Context) (*metrics.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotLoaded, err)
	}

	prev := s.current.Swap(ds)
	if prev != nil && prev.Identity() == ds.Identity() {
		return ds, nil
	}

	s.logger.Info("dataset loaded", "identity", ds.Identity(), "records", ds.Len())

	if prev != nil {
		for _, fn := range s.listeners {
			fn(prev.Identity())
		}
	}
	return ds, nil
}

// Ready reports whether a snapshot has been loaded.
func (s *Source) Ready() bool {
	return s.current.Load() != nil
}

// Start registers the initial load as a startup hook and gates readiness
// on a loaded dataset. A failed load is logged and retried on the first
// request.
func (s *Source) Start(lc *lifecycle.Coordinator) {
	lc.AddCheck(s)
	lc.OnStartup(func() {
		if _, err := s.Reload(lc.Context()); err != nil {
			s.logger.Warn("initial dataset load failed", "error", err)
		}
	})
}

// CSVLoader loads a ledger file. Its identity tracks the file's path,
// size, and modification time.
type CSVLoader struct {
	Path string
	Now  func() time.Time
}

// Identity derives a stable token from the file's metadata.
func (l CSVLoader) Identity(_ context.Context) (string, error) {
	info, err := os.Stat(l.Path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", l.Path, err)
	}
	return identityToken(l.Path, info.Size(), info.ModTime()), nil
}

// Load parses the file and rejects it when parsing reports errors.
func (l CSVLoader) Load(ctx context.Context) (*metrics.Dataset, error) {
	ds, _, err := l.LoadWithIssues(ctx)
	return ds, err
}

// LoadWithIssues parses and validates the file, returning every issue
// found. The dataset is nil when any issue is an error.
func (l CSVLoader) LoadWithIssues(ctx context.Context) (*metrics.Dataset, []Issue, error) {
	id, err := l.Identity(ctx)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", l.Path, err)
	}
	defer f.Close()

	recs, issues, err := Parse(f)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	issues = append(issues, Validate(recs, now())...)

	if HasErrors(issues) {
		return nil, issues, ErrInvalidImport
	}
	return metrics.NewDataset(id, recs), issues, nil
}

func identityToken(name string, count int64, stamp time.Time) string {
	raw := fmt.Sprintf("%s|%d|%d", name, count, stamp.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(raw)).String()
}
