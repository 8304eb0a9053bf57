package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/scrapmetrics/internal/records"
)

const ledger = `date,item,description,location,amount,hours
2025-05-19,I1,Bracket,L1,-60,20
2025-05-20,I2,Housing,L2,-40,20
2025-05-12,I1,Bracket,L1,-80,40
`

func writeLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (map[string]any, []byte, error) {
	t.Helper()
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	var decoded map[string]any
	json.Unmarshal(out.Bytes(), &decoded)
	return decoded, out.Bytes(), err
}

func TestSnapshot(t *testing.T) {
	path := writeLedger(t, ledger)

	got, _, err := run(t, "snapshot", "--csv", path, "--period", "week:21:2025")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	period := got["period"].(map[string]any)
	if period["label"] != "Week 21/2025" {
		t.Errorf("label: got %v, want Week 21/2025", period["label"])
	}
	kpi := got["kpi"].(map[string]any)
	if kpi["record_count"] != float64(2) {
		t.Errorf("record_count: got %v, want 2", kpi["record_count"])
	}
}

func TestReportLastWithRef(t *testing.T) {
	path := writeLedger(t, ledger)

	got, _, err := run(t, "report", "--csv", path, "--ref", "2025-05-28")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	period := got["period"].(map[string]any)
	if period["label"] != "Week 21/2025" {
		t.Errorf("label: got %v, want Week 21/2025", period["label"])
	}
	if _, ok := got["comparison"]; !ok {
		t.Error("report has no comparison")
	}
}

func TestTop(t *testing.T) {
	path := writeLedger(t, ledger)

	_, raw, err := run(t, "top", "--csv", path, "--period", "month:5:2025", "--dimension", "location", "-n", "1")
	if err != nil {
		t.Fatalf("top: %v", err)
	}

	var top []map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("len: got %d, want 1", len(top))
	}
	if top[0]["key"] != "L1" {
		t.Errorf("key: got %v, want L1", top[0]["key"])
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, _, err := run(t, "validate", "--csv", writeLedger(t, ledger))
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if got["valid"] != true || got["records"] != float64(3) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		got, _, err := run(t, "validate", "--csv", writeLedger(t, "date,item\n2025-05-19,I1\n"))
		if !errors.Is(err, records.ErrInvalidImport) {
			t.Fatalf("err: got %v, want ErrInvalidImport", err)
		}
		if got["valid"] != false {
			t.Errorf("valid: got %v, want false", got["valid"])
		}
	})
}

func TestResolve(t *testing.T) {
	got, _, err := run(t, "resolve", "--period", "month:5:2025")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got["fingerprint"] != "month:2025-05" {
		t.Errorf("fingerprint: got %v", got["fingerprint"])
	}
	if got["previous_fingerprint"] != "month:2025-04" {
		t.Errorf("previous_fingerprint: got %v", got["previous_fingerprint"])
	}
}

func TestErrors(t *testing.T) {
	path := writeLedger(t, ledger)

	tests := []struct {
		name string
		args []string
	}{
		{"missing csv", []string{"snapshot"}},
		{"bad period", []string{"snapshot", "--csv", path, "--period", "week:54:2025"}},
		{"bad ref", []string{"report", "--csv", path, "--ref", "yesterday"}},
		{"bad dimension", []string{"top", "--csv", path, "--dimension", "shift"}},
		{"bad n", []string{"top", "--csv", path, "-n", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
