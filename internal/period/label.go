package period

import "fmt"

// Label returns the human-readable name of a spec.
func Label(spec Spec) string {
	switch s := spec.(type) {
	case LastCompleteWeek:
		return "Last complete week"
	case ISOWeek:
		return fmt.Sprintf("Week %d/%d", s.Week, s.Year)
	case CalendarMonth:
		return fmt.Sprintf("%s %d", s.Month, s.Year)
	case CalendarQuarter:
		return fmt.Sprintf("Q%d %d", s.Quarter, s.Year)
	case CalendarYear:
		return fmt.Sprintf("Year %d", s.Year)
	case CustomRange:
		return RangeLabel(Range{Start: s.Start, End: s.End})
	default:
		return ""
	}
}

// RangeLabel names a range by its first and last included day.
func RangeLabel(r Range) string {
	if r.Empty() {
		return fmt.Sprintf("%s (empty)", r.Start.Format(DateLayout))
	}
	return fmt.Sprintf("%s to %s", r.Start.Format(DateLayout), r.Last().Format(DateLayout))
}
