package records

import (
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/scrapmetrics/pkg/query"
	"github.com/JaimeStill/scrapmetrics/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "production_records", "r").
	Project("id", "ID").
	Project("record_date", "Date").
	Project("item", "Item").
	Project("description", "Description").
	Project("location", "Location").
	Project("amount", "Amount").
	Project("hours", "Hours").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = []query.SortField{
	{Field: "Date", Descending: true},
	{Field: "ID"},
}

// Filters narrows record listings. Start is inclusive and End exclusive.
type Filters struct {
	Item      *string    `json:"item,omitempty"`
	Locations []string   `json:"locations,omitempty"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	locations := make([]any, len(f.Locations))
	for i, l := range f.Locations {
		locations[i] = l
	}
	return b.
		WhereEquals("Item", f.Item).
		WhereIn("Location", locations).
		WhereRange("Date", f.Start, f.End)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// The end date is inclusive on the wire. Malformed dates are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if item := values.Get("item"); item != "" {
		f.Item = &item
	}

	for _, raw := range values["location"] {
		for l := range strings.SplitSeq(raw, ",") {
			if l = strings.TrimSpace(l); l != "" {
				f.Locations = append(f.Locations, l)
			}
		}
	}

	if s := values.Get("start"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			f.Start = &t
		}
	}

	if e := values.Get("end"); e != "" {
		if t, err := time.Parse(time.DateOnly, e); err == nil {
			t = t.AddDate(0, 0, 1)
			f.End = &t
		}
	}

	return f
}

func scanRow(s repository.Scanner) (Row, error) {
	var r Row
	err := s.Scan(
		&r.ID,
		&r.Date,
		&r.Item,
		&r.Description,
		&r.Location,
		&r.Amount,
		&r.Hours,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
