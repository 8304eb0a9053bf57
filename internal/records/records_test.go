package records_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/records"
	"github.com/JaimeStill/scrapmetrics/pkg/repository"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func codes(issues []records.Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Code
	}
	return out
}

func TestParse(t *testing.T) {
	t.Run("canonical columns", func(t *testing.T) {
		in := "Date,Item,Description,Location,Amount,Hours\n" +
			"2025-05-19,I1,Bracket,L1,-100.50,40\n" +
			"2025-05-20,I2,,L2,\"1,200\",\n" +
			",,,,,\n"

		recs, issues, err := records.Parse(strings.NewReader(in))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(issues) != 0 {
			t.Fatalf("issues = %v, want none", issues)
		}
		if len(recs) != 2 {
			t.Fatalf("records = %d, want 2", len(recs))
		}

		first := recs[0]
		if !first.Date.Equal(day(2025, time.May, 19)) {
			t.Errorf("date = %v", first.Date)
		}
		if !first.Amount.Equal(decimal.RequireFromString("100.50")) {
			t.Errorf("amount = %s, want 100.50 (absolute)", first.Amount)
		}
		if !first.Hours.Valid || !first.Hours.Decimal.Equal(decimal.NewFromInt(40)) {
			t.Errorf("hours = %v, want 40", first.Hours)
		}

		second := recs[1]
		if second.Hours.Valid {
			t.Error("blank hours should be absent")
		}
		if !second.Amount.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("amount = %s, want 1200", second.Amount)
		}
	})

	t.Run("ledger aliases", func(t *testing.T) {
		in := "\ufeffCreate Date,Item,Location,Total Posted\n05/19/2025,I1,L1,-5\n"
		recs, issues, err := records.Parse(strings.NewReader(in))
		if err != nil || len(issues) != 0 {
			t.Fatalf("parse: %v %v", err, issues)
		}
		if len(recs) != 1 || !recs[0].Date.Equal(day(2025, time.May, 19)) {
			t.Fatalf("records = %+v", recs)
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		_, issues, err := records.Parse(strings.NewReader("date,item\n2025-05-19,I1\n"))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if !records.HasErrors(issues) {
			t.Fatal("expected error issue")
		}
		if issues[0].Code != records.CodeMissingColumns {
			t.Errorf("code = %s", issues[0].Code)
		}
		if !strings.Contains(issues[0].Message, "location, amount") {
			t.Errorf("message = %q", issues[0].Message)
		}
	})

	t.Run("row errors carry line numbers", func(t *testing.T) {
		in := "date,item,location,amount,hours\n" +
			"2025-05-19,I1,L1,10,8\n" +
			"19th May,I1,L1,10,8\n" +
			"2025-05-19,I1,L1,ten,8\n" +
			"2025-05-19,I1,L1,10,-1\n" +
			"2025-05-19,,L1,10,8\n"

		recs, issues, err := records.Parse(strings.NewReader(in))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(recs) != 1 {
			t.Errorf("records = %d, want 1", len(recs))
		}
		want := []struct {
			code string
			row  int
		}{
			{records.CodeInvalidDate, 3},
			{records.CodeInvalidNumber, 4},
			{records.CodeInvalidNumber, 5},
			{records.CodeMissingValue, 6},
		}
		if len(issues) != len(want) {
			t.Fatalf("issues = %v", issues)
		}
		for i, w := range want {
			if issues[i].Code != w.code || issues[i].Row != w.row {
				t.Errorf("issue %d = %s@%d, want %s@%d", i, issues[i].Code, issues[i].Row, w.code, w.row)
			}
			if issues[i].Severity != records.SeverityError {
				t.Errorf("issue %d severity = %s", i, issues[i].Severity)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := records.Parse(strings.NewReader(""))
		if !errors.Is(err, records.ErrEmptyImport) {
			t.Errorf("err = %v, want ErrEmptyImport", err)
		}
	})
}

func rec(date time.Time, item, location string, amount int64) metrics.Record {
	return metrics.Record{
		Date:     date,
		Item:     item,
		Location: location,
		Amount:   decimal.NewFromInt(amount),
	}
}

func TestValidate(t *testing.T) {
	now := day(2026, time.March, 1)

	t.Run("clean", func(t *testing.T) {
		issues := records.Validate([]metrics.Record{
			rec(day(2026, time.February, 2), "I1", "L1", 10),
			rec(day(2026, time.February, 3), "I1", "L1", 12),
		}, now)
		if len(issues) != 0 {
			t.Errorf("issues = %v, want none", issues)
		}
	})

	t.Run("dates", func(t *testing.T) {
		issues := records.Validate([]metrics.Record{
			rec(day(2026, time.March, 2), "I1", "L1", 10),
			rec(day(2019, time.January, 1), "I2", "L1", 10),
		}, now)
		got := codes(issues)
		if len(got) != 2 || got[0] != records.CodeFutureDate || got[1] != records.CodeStaleDate {
			t.Fatalf("codes = %v", got)
		}
		if issues[0].Severity != records.SeverityWarning || issues[1].Severity != records.SeverityInfo {
			t.Errorf("severities = %s, %s", issues[0].Severity, issues[1].Severity)
		}
		if records.HasErrors(issues) {
			t.Error("date issues must not reject the import")
		}
	})

	t.Run("duplicates count every member", func(t *testing.T) {
		d := day(2026, time.February, 2)
		issues := records.Validate([]metrics.Record{
			rec(d, "I1", "L1", 10),
			rec(d, "I1", "L1", 11),
			rec(d, "I1", "L2", 12),
		}, now)
		if len(issues) != 1 || issues[0].Code != records.CodeDuplicate {
			t.Fatalf("issues = %v", issues)
		}
		if issues[0].Count != 2 {
			t.Errorf("count = %d, want 2", issues[0].Count)
		}
	})

	t.Run("outliers need ten values", func(t *testing.T) {
		var recs []metrics.Record
		for i := range 9 {
			recs = append(recs, rec(day(2026, time.February, i+1), "I1", "L1", 10))
		}
		recs = append(recs, rec(day(2026, time.February, 10), "I1", "L1", 10000))

		issues := records.Validate(recs, now)
		if len(issues) != 1 || issues[0].Code != records.CodeOutlier || issues[0].Count != 1 {
			t.Fatalf("issues = %v", issues)
		}

		issues = records.Validate(recs[1:], now)
		if len(issues) != 0 {
			t.Errorf("nine values: issues = %v, want none", issues)
		}
	})
}

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{
		"item":     {"I1"},
		"location": {"L1,L2", " L3 "},
		"start":    {"2025-05-01"},
		"end":      {"2025-05-31"},
	}
	f := records.FiltersFromQuery(values)

	if f.Item == nil || *f.Item != "I1" {
		t.Errorf("item = %v", f.Item)
	}
	if strings.Join(f.Locations, "|") != "L1|L2|L3" {
		t.Errorf("locations = %v", f.Locations)
	}
	if f.Start == nil || !f.Start.Equal(day(2025, time.May, 1)) {
		t.Errorf("start = %v", f.Start)
	}
	if f.End == nil || !f.End.Equal(day(2025, time.June, 1)) {
		t.Errorf("end = %v, want exclusive 2025-06-01", f.End)
	}

	empty := records.FiltersFromQuery(url.Values{"start": {"bogus"}})
	if empty.Start != nil || empty.Item != nil || empty.Locations != nil {
		t.Errorf("filters = %+v, want empty", empty)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{records.ErrInvalidImport, http.StatusUnprocessableEntity},
		{records.ErrEmptyImport, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", records.ErrInvalidFile), http.StatusBadRequest},
		{records.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{records.ErrNotLoaded, http.StatusServiceUnavailable},
		{&repository.ConstraintError{Code: "23514"}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := records.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type stubLoader struct {
	mu       sync.Mutex
	identity string
	loads    int
	err      error
}

func (l *stubLoader) set(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.identity = id
}

func (l *stubLoader) Identity(context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.identity, l.err
}

func (l *stubLoader) Load(context.Context) (*metrics.Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.loads++
	return metrics.NewDataset(l.identity, nil), nil
}

func TestSource(t *testing.T) {
	ctx := context.Background()

	t.Run("reloads on identity change", func(t *testing.T) {
		loader := &stubLoader{identity: "v1"}
		src := records.NewSource(loader, discard())

		var stale []string
		src.OnReload(func(id string) { stale = append(stale, id) })

		if src.Ready() {
			t.Fatal("ready before load")
		}

		ds, err := src.Current(ctx)
		if err != nil || ds.Identity() != "v1" {
			t.Fatalf("current = %v, %v", ds, err)
		}
		if _, err := src.Current(ctx); err != nil {
			t.Fatal(err)
		}
		if loader.loads != 1 {
			t.Errorf("loads = %d, want 1", loader.loads)
		}
		if len(stale) != 0 {
			t.Errorf("first load notified %v", stale)
		}

		loader.set("v2")
		ds, err = src.Current(ctx)
		if err != nil || ds.Identity() != "v2" {
			t.Fatalf("current = %v, %v", ds, err)
		}
		if len(stale) != 1 || stale[0] != "v1" {
			t.Errorf("stale = %v, want [v1]", stale)
		}
		if !src.Ready() {
			t.Error("not ready after load")
		}
	})

	t.Run("unchanged reload does not notify", func(t *testing.T) {
		loader := &stubLoader{identity: "v1"}
		src := records.NewSource(loader, discard())
		notified := 0
		src.OnReload(func(string) { notified++ })

		src.Reload(ctx)
		src.Reload(ctx)
		if notified != 0 {
			t.Errorf("notified = %d, want 0", notified)
		}
	})

	t.Run("failure before first load", func(t *testing.T) {
		loader := &stubLoader{err: errors.New("db down")}
		src := records.NewSource(loader, discard())
		if _, err := src.Current(ctx); !errors.Is(err, records.ErrNotLoaded) {
			t.Errorf("err = %v, want ErrNotLoaded", err)
		}
	})

	t.Run("identity failure serves cached", func(t *testing.T) {
		loader := &stubLoader{identity: "v1"}
		src := records.NewSource(loader, discard())
		src.Reload(ctx)

		loader.mu.Lock()
		loader.err = errors.New("db down")
		loader.mu.Unlock()

		ds, err := src.Current(ctx)
		if err != nil || ds.Identity() != "v1" {
			t.Errorf("current = %v, %v", ds, err)
		}
	})
}

func TestCSVLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	content := "date,item,location,amount,hours\n2025-05-19,I1,L1,100,40\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := records.CSVLoader{Path: path, Now: func() time.Time { return day(2025, time.June, 1) }}
	ctx := context.Background()

	id1, err := loader.Identity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 1 || ds.Identity() != id1 {
		t.Errorf("dataset = %d records, identity %s (want %s)", ds.Len(), ds.Identity(), id1)
	}

	content += "2025-05-20,I2,L1,50,40\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	id2, _ := loader.Identity(ctx)
	if id2 == id1 {
		t.Error("identity unchanged after rewrite")
	}

	bad := filepath.Join(dir, "bad.csv")
	os.WriteFile(bad, []byte("date,item\n"), 0o644)
	_, issues, err := records.CSVLoader{Path: bad}.LoadWithIssues(ctx)
	if !errors.Is(err, records.ErrInvalidImport) || !records.HasErrors(issues) {
		t.Errorf("err = %v, issues = %v", err, issues)
	}

	if _, err := (records.CSVLoader{Path: filepath.Join(dir, "missing.csv")}).Identity(ctx); err == nil {
		t.Error("expected error for missing file")
	}
}
