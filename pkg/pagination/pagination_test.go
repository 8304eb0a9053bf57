package pagination_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
	"github.com/JaimeStill/scrapmetrics/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")

	cfg := pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 100 {
		t.Errorf("cfg = %+v, want {50 100}", cfg)
	}

	bad := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	err := bad.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("error = %v, want default/max violation", err)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", pagination.PageRequest{}, 1, 20},
		{"negative page corrected", pagination.PageRequest{Page: -1, PageSize: 10}, 1, 10},
		{"page size clamped", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage || tt.req.PageSize != tt.wantPageSize {
				t.Errorf("got (%d, %d), want (%d, %d)", tt.req.Page, tt.req.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{
		"page":      {"2"},
		"page_size": {"15"},
		"search":    {"gasket"},
		"sort":      {"Location,-Date"},
	}

	req := pagination.PageRequestFromQuery(values, defaultConfig())

	if req.Page != 2 || req.PageSize != 15 {
		t.Errorf("page = (%d, %d), want (2, 15)", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "gasket" {
		t.Errorf("Search = %v, want gasket", req.Search)
	}
	if len(req.Sort) != 2 || req.Sort[1] != (query.SortField{Field: "Date", Descending: true}) {
		t.Errorf("Sort = %v", req.Sort)
	}
	if req.Offset() != 15 {
		t.Errorf("Offset() = %d, want 15", req.Offset())
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total     int
		wantPages int
	}{
		{100, 5},
		{101, 6},
		{0, 1},
	}

	for _, tt := range tests {
		result := pagination.NewPageResult[string](nil, tt.total, 1, 20)
		if result.TotalPages != tt.wantPages {
			t.Errorf("total %d: TotalPages = %d, want %d", tt.total, result.TotalPages, tt.wantPages)
		}
		if result.Data == nil {
			t.Errorf("total %d: Data should be empty, not nil", tt.total)
		}
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	for _, input := range []string{
		`"Item,-Date"`,
		`[{"Field":"Item","Descending":false},{"Field":"Date","Descending":true}]`,
	} {
		var sf pagination.SortFields
		if err := json.Unmarshal([]byte(input), &sf); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if len(sf) != 2 || sf[0].Field != "Item" || !sf[1].Descending {
			t.Errorf("%s: got %v", input, sf)
		}
	}
}
