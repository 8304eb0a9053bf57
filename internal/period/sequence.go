package period

import (
	"fmt"
	"time"
)

// Unit is the period granularity of a trend series.
type Unit string

const (
	UnitWeek    Unit = "week"
	UnitMonth   Unit = "month"
	UnitQuarter Unit = "quarter"
	UnitYear    Unit = "year"
)

// ParseUnit parses a unit name.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case UnitWeek, UnitMonth, UnitQuarter, UnitYear:
		return u, nil
	default:
		return "", invalid("unit", s, "must be week, month, quarter or year")
	}
}

// UnitOf returns the unit of a calendar spec. Custom ranges and
// LastCompleteWeek have no unit.
func UnitOf(spec Spec) (Unit, bool) {
	switch spec.(type) {
	case ISOWeek:
		return UnitWeek, true
	case CalendarMonth:
		return UnitMonth, true
	case CalendarQuarter:
		return UnitQuarter, true
	case CalendarYear:
		return UnitYear, true
	default:
		return "", false
	}
}

// Containing returns the period of the given unit that contains t.
func Containing(unit Unit, t time.Time) (Spec, error) {
	switch unit {
	case UnitWeek:
		return WeekOf(t), nil
	case UnitMonth:
		return MonthOf(t), nil
	case UnitQuarter:
		return QuarterOf(t), nil
	case UnitYear:
		return YearOf(t), nil
	default:
		return nil, invalid("unit", string(unit), "is not a known unit")
	}
}

// Trailing returns count consecutive periods ending with last, ordered
// oldest to newest. last must be a calendar spec.
func Trailing(last Spec, count int) ([]Spec, error) {
	if _, ok := UnitOf(last); !ok {
		return nil, invalid("spec", last.Fingerprint(), "has no trend unit")
	}
	if count < 1 {
		return nil, invalid("count", count, "must be at least 1")
	}

	specs := make([]Spec, count)
	specs[count-1] = last
	for i := count - 2; i >= 0; i-- {
		prev, err := Previous(specs[i+1])
		if err != nil {
			return nil, fmt.Errorf("trailing %d from %s: %w", count, last.Fingerprint(), err)
		}
		specs[i] = prev
	}
	return specs, nil
}

// Segments splits r into at most max contiguous sub-ranges of roughly one
// week each. The final segment absorbs any remainder so the union equals r.
func Segments(r Range, max int) []Range {
	days := r.Days()
	if days <= 0 || max < 1 {
		return nil
	}

	n := min(max, (days+6)/7)
	size := days / n

	segments := make([]Range, 0, n)
	start := r.Start
	for i := range n {
		end := start.AddDate(0, 0, size)
		if i == n-1 {
			end = r.End
		}
		segments = append(segments, Range{Start: start, End: end})
		start = end
	}
	return segments
}
