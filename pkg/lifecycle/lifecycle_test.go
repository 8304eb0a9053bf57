package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/scrapmetrics/pkg/lifecycle"
)

type flag struct{ ready atomic.Bool }

func (f *flag) Ready() bool { return f.ready.Load() }

func TestReady(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Error("not ready after WaitForStartup")
	}
}

func TestReadyChecks(t *testing.T) {
	lc := lifecycle.New()
	dataset := &flag{}
	lc.AddCheck(dataset)

	lc.WaitForStartup()
	if lc.Ready() {
		t.Error("ready while a check reports not ready")
	}

	dataset.ready.Store(true)
	if !lc.Ready() {
		t.Error("not ready after every check passed")
	}
}

func TestChecksDoNotBypassStartup(t *testing.T) {
	lc := lifecycle.New()
	check := &flag{}
	check.ready.Store(true)
	lc.AddCheck(check)

	if lc.Ready() {
		t.Error("ready before startup hooks completed")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdown(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		timeout time.Duration
		wantErr bool
	}{
		{"hooks finish", 0, 5 * time.Second, false},
		{"hooks exceed timeout", 500 * time.Millisecond, 50 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.New()

			var cleaned atomic.Bool
			lc.OnShutdown(func() {
				<-lc.Context().Done()
				time.Sleep(tt.delay)
				cleaned.Store(true)
			})

			lc.WaitForStartup()

			err := lc.Shutdown(tt.timeout)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Shutdown() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !cleaned.Load() {
				t.Error("shutdown hook did not execute")
			}

			select {
			case <-lc.Context().Done():
			default:
				t.Error("context not cancelled after shutdown")
			}
		})
	}
}
