package period

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for ranges and labels.
const DateLayout = "2006-01-02"

// Range is a half-open calendar date range [Start, End).
// Both bounds are dates at midnight UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange builds a Range from two dates, truncating both to calendar days.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	if r.End.Before(r.Start) {
		return Range{}, invalid("range", r, "end precedes start")
	}
	return r, nil
}

// Date returns the calendar date y-m-d at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar date, keeping the wall-clock date of t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Contains reports whether the calendar date of t falls within [Start, End).
// This is the only date predicate used for record filtering.
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && d.Before(r.End)
}

// Days returns the length of the range in calendar days.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Empty reports whether the range contains no days.
func (r Range) Empty() bool {
	return !r.Start.Before(r.End)
}

// Last returns the final calendar day inside the range.
func (r Range) Last() time.Time {
	return r.End.AddDate(0, 0, -1)
}

// Shift moves both bounds by the given number of days.
func (r Range) Shift(days int) Range {
	return Range{Start: r.Start.AddDate(0, 0, days), End: r.End.AddDate(0, 0, days)}
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

type rangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeJSON{
		Start: r.Start.Format(DateLayout),
		End:   r.End.Format(DateLayout),
	})
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var raw rangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(DateLayout, raw.Start)
	if err != nil {
		return fmt.Errorf("range start: %w", err)
	}
	end, err := time.Parse(DateLayout, raw.End)
	if err != nil {
		return fmt.Errorf("range end: %w", err)
	}
	parsed, err := NewRange(start, end)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
