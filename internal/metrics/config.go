package metrics

import (
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// Targets holds the target scrap rates. Monthly is indexed by month-1.
// A zero Weekly target means weeks use the monthly entry of the month that
// holds the week's Thursday.
type Targets struct {
	Monthly [12]float64
	Weekly  float64
	Default float64
}

// Thresholds tunes the comparison, trend and alert rules.
type Thresholds struct {
	// Improvement is the relative rate change below which a comparison is Unchanged.
	Improvement float64
	// HighVariance is the rate-over-target excess that raises a critical alert.
	HighVariance float64
	// StableBand is the largest absolute pairwise rate change still considered Stable.
	StableBand float64
	// AbruptChange is the relative single-period rise flagged as a spike.
	AbruptChange float64
	// TrendWindow is the number of trailing points the trend alerts inspect.
	TrendWindow int
}

// Config is the immutable configuration passed into every engine call.
type Config struct {
	Targets    Targets
	Thresholds Thresholds
}

// DefaultTargets returns the stock target table.
func DefaultTargets() Targets {
	return Targets{
		Monthly: [12]float64{0.50, 0.50, 0.40, 0.30, 0.50, 0.50, 0.40, 0.50, 0.60, 0.40, 0.50, 0.30},
		Default: 0.50,
	}
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Improvement:  0.01,
		HighVariance: 0.10,
		StableBand:   0.02,
		AbruptChange: 0.25,
		TrendWindow:  3,
	}
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Targets:    DefaultTargets(),
		Thresholds: DefaultThresholds(),
	}
}

// Month returns the target for a calendar month.
func (t Targets) Month(m time.Month) float64 {
	if m < time.January || m > time.December {
		return t.Default
	}
	return t.Monthly[m-1]
}

// For returns the target rate that applies to a concrete spec.
func (t Targets) For(spec period.Spec) float64 {
	switch s := spec.(type) {
	case period.ISOWeek:
		if t.Weekly > 0 {
			return t.Weekly
		}
		thursday := period.WeekStart(s.Week, s.Year).AddDate(0, 0, 3)
		return t.Month(thursday.Month())
	case period.CalendarMonth:
		return t.Month(s.Month)
	case period.CalendarQuarter:
		var sum float64
		months := s.Months()
		for _, m := range months {
			sum += t.Month(m)
		}
		return sum / float64(len(months))
	default:
		return t.Default
	}
}
