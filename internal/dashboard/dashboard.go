// Package dashboard composes the metrics engine into period snapshots.
// Snapshots are memoized per (period, dataset identity), and the Refresher
// delivers only the newest of several overlapping requests.
package dashboard

import (
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// Snapshot is the full dashboard view of one period.
type Snapshot struct {
	Period       period.Resolution      `json:"period"`
	Source       string                 `json:"source"`
	KPI          *metrics.KPI           `json:"kpi"`
	Comparison   *metrics.Comparison    `json:"comparison"`
	Trend        metrics.Trend          `json:"trend"`
	Shape        metrics.Classification `json:"shape"`
	Alerts       []metrics.Alert        `json:"alerts"`
	TopItems     []metrics.Contributor  `json:"top_items"`
	TopLocations []metrics.Contributor  `json:"top_locations"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// Report is the reduced view consumed by report generators.
type Report struct {
	Period     period.Resolution   `json:"period"`
	Source     string              `json:"source"`
	KPI        *metrics.KPI        `json:"kpi"`
	Comparison *metrics.Comparison `json:"comparison"`
}

// Report reduces the snapshot to its report view.
func (s *Snapshot) Report() *Report {
	return &Report{
		Period:     s.Period,
		Source:     s.Source,
		KPI:        s.KPI,
		Comparison: s.Comparison,
	}
}

// Options tunes snapshot composition.
type Options struct {
	// Trend lengths per period unit.
	WeekTrend    int
	MonthTrend   int
	QuarterTrend int
	YearTrend    int
	// CustomSegments caps the trend points of a custom range.
	CustomSegments int
	TopN           int
	// LookbackWeeks bounds the walk back from an empty last complete week
	// to the newest week with records. Zero disables the walk.
	LookbackWeeks int
}

// DefaultOptions returns the standard dashboard tuning.
func DefaultOptions() Options {
	return Options{
		WeekTrend:      4,
		MonthTrend:     6,
		QuarterTrend:   4,
		YearTrend:      3,
		CustomSegments: 6,
		TopN:           10,
		LookbackWeeks:  8,
	}
}

// TrendLength returns the number of trend points for unit.
func (o Options) TrendLength(unit period.Unit) int {
	switch unit {
	case period.UnitWeek:
		return o.WeekTrend
	case period.UnitMonth:
		return o.MonthTrend
	case period.UnitQuarter:
		return o.QuarterTrend
	default:
		return o.YearTrend
	}
}
