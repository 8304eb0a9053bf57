package dashboard

import (
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// PeriodRequest is the wire form of a period selection. Type selects the
// variant and only the fields it needs are read. End is the last included
// day of a custom range. Ref optionally pins the reference date.
type PeriodRequest struct {
	Type    string `json:"type"`
	Week    int    `json:"week,omitempty"`
	Month   int    `json:"month,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
	Year    int    `json:"year,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

// PeriodRequestFromQuery extracts a period selection from URL query
// parameters. Non-numeric values are left zero and rejected by Spec.
func PeriodRequestFromQuery(values url.Values) PeriodRequest {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(values.Get(key))
		return n
	}
	return PeriodRequest{
		Type:    values.Get("type"),
		Week:    atoi("week"),
		Month:   atoi("month"),
		Quarter: atoi("quarter"),
		Year:    atoi("year"),
		Start:   values.Get("start"),
		End:     values.Get("end"),
		Ref:     values.Get("ref"),
	}
}

// Spec builds the period spec. An empty type selects the last complete week.
func (p PeriodRequest) Spec() (period.Spec, error) {
	switch period.Kind(p.Type) {
	case "", period.KindLastComplete:
		return period.LastComplete(), nil
	case period.KindWeek:
		return period.Week(p.Week, p.Year)
	case period.KindMonth:
		return period.Month(p.Month, p.Year)
	case period.KindQuarter:
		return period.Quarter(p.Quarter, p.Year)
	case period.KindYear:
		return period.Year(p.Year)
	case period.KindCustom:
		start, end, err := period.ParseInclusive(p.Start, p.End)
		if err != nil {
			return nil, err
		}
		return period.Custom(start, end)
	default:
		return period.Parse(p.Type)
	}
}

// RefTime returns the reference date, or now when Ref is empty.
func (p PeriodRequest) RefTime(now time.Time) (time.Time, error) {
	if p.Ref == "" {
		return now, nil
	}
	t, err := time.Parse(period.DateLayout, p.Ref)
	if err != nil {
		return time.Time{}, &period.InvalidPeriodError{Field: "ref", Value: p.Ref, Reason: "is not a YYYY-MM-DD date"}
	}
	return t, nil
}
