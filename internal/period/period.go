// Package period resolves abstract reporting periods into concrete half-open
// date ranges and their previous equivalent periods.
//
// A Spec is a closed sum type: LastCompleteWeek, ISOWeek, CalendarMonth,
// CalendarQuarter, CalendarYear and CustomRange are its only variants.
// All calendar rollover arithmetic lives in this package.
package period

import (
	"fmt"
	"time"
)

// Kind discriminates the Spec variants.
type Kind string

const (
	KindLastComplete Kind = "last"
	KindWeek         Kind = "week"
	KindMonth        Kind = "month"
	KindQuarter      Kind = "quarter"
	KindYear         Kind = "year"
	KindCustom       Kind = "custom"
)

// Spec is an abstract period specification.
type Spec interface {
	// Kind returns the variant discriminator.
	Kind() Kind
	// Fingerprint returns a stable identity string for cache keys.
	Fingerprint() string

	validate() error
}

// LastCompleteWeek is the most recent fully elapsed ISO week at the reference date.
type LastCompleteWeek struct{}

// ISOWeek is a week in ISO-8601 week numbering (Monday through Sunday).
type ISOWeek struct {
	Week int
	Year int
}

// CalendarMonth is a Gregorian calendar month.
type CalendarMonth struct {
	Month time.Month
	Year  int
}

// CalendarQuarter is a three-month calendar quarter.
type CalendarQuarter struct {
	Quarter int
	Year    int
}

// CalendarYear is a full Gregorian year.
type CalendarYear struct {
	Year int
}

// CustomRange is an explicit half-open date range [Start, End).
type CustomRange struct {
	Start time.Time
	End   time.Time
}

// LastComplete returns the LastCompleteWeek spec.
func LastComplete() Spec {
	return LastCompleteWeek{}
}

// Week returns a validated ISOWeek spec.
func Week(week, year int) (Spec, error) {
	s := ISOWeek{Week: week, Year: year}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Month returns a validated CalendarMonth spec.
func Month(month, year int) (Spec, error) {
	s := CalendarMonth{Month: time.Month(month), Year: year}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Quarter returns a validated CalendarQuarter spec.
func Quarter(quarter, year int) (Spec, error) {
	s := CalendarQuarter{Quarter: quarter, Year: year}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Year returns a validated CalendarYear spec.
func Year(year int) (Spec, error) {
	s := CalendarYear{Year: year}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Custom returns a validated CustomRange spec over [start, end).
func Custom(start, end time.Time) (Spec, error) {
	s := CustomRange{Start: Day(start), End: Day(end)}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (LastCompleteWeek) Kind() Kind { return KindLastComplete }
func (LastCompleteWeek) Fingerprint() string { return string(KindLastComplete) }
func (LastCompleteWeek) validate() error { return nil }

func (s ISOWeek) Kind() Kind { return KindWeek }

func (s ISOWeek) Fingerprint() string {
	return fmt.Sprintf("%s:%04d-W%02d", KindWeek, s.Year, s.Week)
}

func (s ISOWeek) validate() error {
	if err := validateYear(s.Year); err != nil {
		return err
	}
	if s.Week < 1 || s.Week > 53 {
		return invalid("week", s.Week, "out of range [1,53]")
	}
	if n := WeeksInYear(s.Year); s.Week > n {
		return invalid("week", s.Week, fmt.Sprintf("exceeds the %d ISO weeks of %d", n, s.Year))
	}
	return nil
}

func (s CalendarMonth) Kind() Kind { return KindMonth }

func (s CalendarMonth) Fingerprint() string {
	return fmt.Sprintf("%s:%04d-%02d", KindMonth, s.Year, int(s.Month))
}

func (s CalendarMonth) validate() error {
	if err := validateYear(s.Year); err != nil {
		return err
	}
	if s.Month < time.January || s.Month > time.December {
		return invalid("month", int(s.Month), "out of range [1,12]")
	}
	return nil
}

func (s CalendarQuarter) Kind() Kind { return KindQuarter }

func (s CalendarQuarter) Fingerprint() string {
	return fmt.Sprintf("%s:%04d-Q%d", KindQuarter, s.Year, s.Quarter)
}

func (s CalendarQuarter) validate() error {
	if err := validateYear(s.Year); err != nil {
		return err
	}
	if s.Quarter < 1 || s.Quarter > 4 {
		return invalid("quarter", s.Quarter, "out of range [1,4]")
	}
	return nil
}

// Months returns the three months covered by the quarter.
func (s CalendarQuarter) Months() []time.Month {
	first := time.Month((s.Quarter-1)*3 + 1)
	return []time.Month{first, first + 1, first + 2}
}

func (s CalendarYear) Kind() Kind { return KindYear }

func (s CalendarYear) Fingerprint() string {
	return fmt.Sprintf("%s:%04d", KindYear, s.Year)
}

func (s CalendarYear) validate() error {
	return validateYear(s.Year)
}

func (s CustomRange) Kind() Kind { return KindCustom }

func (s CustomRange) Fingerprint() string {
	return fmt.Sprintf("%s:%s/%s", KindCustom, s.Start.Format(DateLayout), s.End.Format(DateLayout))
}

func (s CustomRange) validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return invalid("custom", s.Fingerprint(), "requires start and end dates")
	}
	if s.Start.After(s.End) {
		return invalid("custom", s.Fingerprint(), "start is after end")
	}
	return nil
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return invalid("year", year, "out of range [1,9999]")
	}
	return nil
}
