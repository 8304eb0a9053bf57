package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// TrendPoint is one period of a trend series.
type TrendPoint struct {
	Label string `json:"label"`
	KPI   *KPI   `json:"kpi"`
}

// Trend is a sequence of points ordered oldest to newest.
type Trend []TrendPoint

// Shape classifies a trend.
type Shape string

const (
	Increasing       Shape = "increasing"
	Decreasing       Shape = "decreasing"
	Volatile         Shape = "volatile"
	Stable           Shape = "stable"
	InsufficientData Shape = "insufficient_data"
)

// Classification is the shape of a trend plus the abrupt-change flag, which
// is set when the newest point rose more than Thresholds.AbruptChange
// relative to the one before it.
type Classification struct {
	Shape  Shape `json:"shape"`
	Abrupt bool  `json:"abrupt"`
}

// BuildTrend aggregates the count consecutive periods of unit that end with
// the period containing endingAt, oldest first.
func BuildTrend(ds *Dataset, unit period.Unit, count int, endingAt time.Time, targets Targets) (Trend, error) {
	last, err := period.Containing(unit, endingAt)
	if err != nil {
		return nil, err
	}
	return TrendOf(ds, last, count, targets)
}

// TrendOf aggregates the count consecutive periods ending with last.
func TrendOf(ds *Dataset, last period.Spec, count int, targets Targets) (Trend, error) {
	specs, err := period.Trailing(last, count)
	if err != nil {
		return nil, err
	}

	trend := make(Trend, 0, len(specs))
	for _, s := range specs {
		r, err := period.Bounds(s)
		if err != nil {
			return nil, fmt.Errorf("trend point %s: %w", s.Fingerprint(), err)
		}
		label := period.Label(s)
		trend = append(trend, TrendPoint{
			Label: label,
			KPI:   Aggregate(ds, r, targets.For(s), label),
		})
	}
	return trend, nil
}

// SegmentTrend splits r into at most max segments and aggregates each
// against a single target.
func SegmentTrend(ds *Dataset, r period.Range, max int, target float64) Trend {
	segments := period.Segments(r, max)
	trend := make(Trend, 0, len(segments))
	for _, seg := range segments {
		label := period.RangeLabel(seg)
		trend = append(trend, TrendPoint{
			Label: label,
			KPI:   Aggregate(ds, seg, target, label),
		})
	}
	return trend
}

// Tail returns the last n points, or the whole trend when shorter.
func (t Trend) Tail(n int) Trend {
	if n < 0 || len(t) <= n {
		return t
	}
	return t[len(t)-n:]
}

// Gapless reports whether every point has records.
func (t Trend) Gapless() bool {
	for _, p := range t {
		if !p.KPI.HasData() {
			return false
		}
	}
	return true
}

// Classify determines the shape of t. A pair of adjacent points is
// comparable only when both rates are defined; an incomparable pair rules
// out a monotonic shape.
func Classify(t Trend, th Thresholds) Classification {
	if len(t) < 3 {
		return Classification{Shape: InsufficientData}
	}

	var (
		rises, falls, comparable int
		maxChange                float64
	)

	for i := 1; i < len(t); i++ {
		prev, okPrev := t[i-1].KPI.Rate.Get()
		cur, okCur := t[i].KPI.Rate.Get()
		if !okPrev || !okCur {
			continue
		}
		comparable++
		switch {
		case cur > prev:
			rises++
		case cur < prev:
			falls++
		}
		maxChange = math.Max(maxChange, math.Abs(cur-prev))
	}

	c := Classification{Abrupt: abrupt(t, th)}
	pairs := len(t) - 1

	switch {
	case comparable == 0:
		c.Shape = InsufficientData
	case rises == pairs:
		c.Shape = Increasing
	case falls == pairs:
		c.Shape = Decreasing
	case !greater(th.StableBand, maxChange):
		c.Shape = Volatile
	default:
		c.Shape = Stable
	}
	return c
}

func abrupt(t Trend, th Thresholds) bool {
	prev, okPrev := t[len(t)-2].KPI.Rate.Get()
	cur, okCur := t[len(t)-1].KPI.Rate.Get()
	if !okPrev || !okCur || prev <= 0 {
		return false
	}
	return greater((cur-prev)/prev, th.AbruptChange)
}
