package period

import (
	"fmt"
	"time"
)

// Resolution is a period spec resolved against a reference date.
type Resolution struct {
	Spec          Spec   `json:"-"`
	PreviousSpec  Spec   `json:"-"`
	Current       Range  `json:"current"`
	Previous      Range  `json:"previous"`
	Label         string `json:"label"`
	PreviousLabel string `json:"previous_label"`
}

// Resolve turns spec into its concrete current range and the range of the
// previous equivalent period. The reference date only matters for
// LastCompleteWeek, which resolves to a concrete ISOWeek first.
func Resolve(spec Spec, ref time.Time) (Resolution, error) {
	concrete, err := Concrete(spec, ref)
	if err != nil {
		return Resolution{}, err
	}

	prev, err := Previous(concrete)
	if err != nil {
		return Resolution{}, err
	}

	current, err := Bounds(concrete)
	if err != nil {
		return Resolution{}, err
	}

	previous, err := Bounds(prev)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		Spec:          concrete,
		PreviousSpec:  prev,
		Current:       current,
		Previous:      previous,
		Label:         Label(concrete),
		PreviousLabel: Label(prev),
	}, nil
}

// Concrete validates spec and replaces LastCompleteWeek with the ISO week it
// denotes at ref. Every other variant is returned unchanged.
func Concrete(spec Spec, ref time.Time) (Spec, error) {
	if spec == nil {
		return nil, invalid("spec", nil, "is required")
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if _, ok := spec.(LastCompleteWeek); ok {
		return lastCompleteWeek(ref), nil
	}
	return spec, nil
}

// Bounds returns the half-open range covered by a concrete spec.
func Bounds(spec Spec) (Range, error) {
	if spec == nil {
		return Range{}, invalid("spec", nil, "is required")
	}
	if err := spec.validate(); err != nil {
		return Range{}, err
	}

	switch s := spec.(type) {
	case ISOWeek:
		start := WeekStart(s.Week, s.Year)
		return Range{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case CalendarMonth:
		start := Date(s.Year, s.Month, 1)
		return Range{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case CalendarQuarter:
		start := Date(s.Year, s.Months()[0], 1)
		return Range{Start: start, End: start.AddDate(0, 3, 0)}, nil
	case CalendarYear:
		start := Date(s.Year, time.January, 1)
		return Range{Start: start, End: start.AddDate(1, 0, 0)}, nil
	case CustomRange:
		return Range{Start: s.Start, End: s.End}, nil
	case LastCompleteWeek:
		return Range{}, invalid("last", s.Fingerprint(), "requires a reference date")
	default:
		return Range{}, invalid("spec", fmt.Sprintf("%T", spec), "is not a known variant")
	}
}

// Previous returns the previous equivalent period of a concrete spec,
// applying calendar rollover: week 1 maps to the last ISO week of the prior
// ISO year, month 1 to December, quarter 1 to Q4 of the prior year.
func Previous(spec Spec) (Spec, error) {
	if spec == nil {
		return nil, invalid("spec", nil, "is required")
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}

	var prev Spec
	switch s := spec.(type) {
	case ISOWeek:
		if s.Week > 1 {
			prev = ISOWeek{Week: s.Week - 1, Year: s.Year}
		} else {
			prev = ISOWeek{Week: WeeksInYear(s.Year - 1), Year: s.Year - 1}
		}
	case CalendarMonth:
		if s.Month > time.January {
			prev = CalendarMonth{Month: s.Month - 1, Year: s.Year}
		} else {
			prev = CalendarMonth{Month: time.December, Year: s.Year - 1}
		}
	case CalendarQuarter:
		if s.Quarter > 1 {
			prev = CalendarQuarter{Quarter: s.Quarter - 1, Year: s.Year}
		} else {
			prev = CalendarQuarter{Quarter: 4, Year: s.Year - 1}
		}
	case CalendarYear:
		prev = CalendarYear{Year: s.Year - 1}
	case CustomRange:
		days := Range{Start: s.Start, End: s.End}.Days()
		prev = CustomRange{Start: s.Start.AddDate(0, 0, -days), End: s.Start}
	case LastCompleteWeek:
		return nil, invalid("last", s.Fingerprint(), "requires a reference date")
	default:
		return nil, invalid("spec", fmt.Sprintf("%T", spec), "is not a known variant")
	}

	if err := prev.validate(); err != nil {
		return nil, fmt.Errorf("previous of %s: %w", spec.Fingerprint(), err)
	}
	return prev, nil
}

// lastCompleteWeek returns the newest ISO week whose Sunday is on or before ref.
func lastCompleteWeek(ref time.Time) ISOWeek {
	d := Day(ref)
	if d.Weekday() == time.Sunday {
		return WeekOf(d)
	}
	return WeekOf(mondayOf(d).AddDate(0, 0, -7))
}
