package reports

import (
	"net/url"

	"github.com/JaimeStill/scrapmetrics/pkg/query"
	"github.com/JaimeStill/scrapmetrics/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reports", "r").
	Project("id", "ID").
	Project("period_type", "PeriodType").
	Project("label", "Label").
	Project("fingerprint", "Fingerprint").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for report queries.
// PeriodType and Fingerprint match exactly; Label matches by substring.
type Filters struct {
	PeriodType  *string `json:"period_type,omitempty"`
	Fingerprint *string `json:"fingerprint,omitempty"`
	Label       *string `json:"label,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("PeriodType", f.PeriodType).
		WhereEquals("Fingerprint", f.Fingerprint).
		WhereContains("Label", f.Label)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if pt := values.Get("period_type"); pt != "" {
		f.PeriodType = &pt
	}

	if fp := values.Get("fingerprint"); fp != "" {
		f.Fingerprint = &fp
	}

	if l := values.Get("label"); l != "" {
		f.Label = &l
	}

	return f
}

func scanReport(s repository.Scanner) (Report, error) {
	var r Report
	err := s.Scan(
		&r.ID,
		&r.PeriodType,
		&r.Label,
		&r.Fingerprint,
		&r.Filename,
		&r.ContentType,
		&r.SizeBytes,
		&r.PageCount,
		&r.StorageKey,
		&r.CreatedAt,
	)
	return r, err
}
