package metrics

import (
	"fmt"
	"slices"
)

// Severity ranks alerts. Critical sorts first.
type Severity string

const (
	Critical Severity = "critical"
	Warning  Severity = "warning"
	Info     Severity = "info"
	Success  Severity = "success"
)

func (s Severity) rank() int {
	switch s {
	case Critical:
		return 0
	case Warning:
		return 1
	case Info:
		return 2
	default:
		return 3
	}
}

// Alert codes.
const (
	CodeExceedsTarget       = "exceeds_target"
	CodeRisingTrend         = "rising_trend"
	CodeSuddenSpike         = "sudden_spike"
	CodeSustainedCompliance = "sustained_compliance"
	CodeSummary             = "summary"
)

// Alert is a single rule finding.
type Alert struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

type rule func(current *KPI, trend Trend, th Thresholds) (Alert, bool)

var rules = []rule{
	exceedsTarget,
	risingTrend,
	suddenSpike,
	sustainedCompliance,
}

// Evaluate runs the alert rules against the current KPI and its trend.
// Alerts are ordered by severity and then by rule order. The summary alert
// is emitted only when no other rule fires.
func Evaluate(current *KPI, trend Trend, th Thresholds) []Alert {
	alerts := make([]Alert, 0, len(rules))
	for _, r := range rules {
		if a, ok := r(current, trend, th); ok {
			alerts = append(alerts, a)
		}
	}

	if len(alerts) == 0 {
		alerts = append(alerts, summary(current))
	}

	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return a.Severity.rank() - b.Severity.rank()
	})
	return alerts
}

func exceedsTarget(current *KPI, _ Trend, th Thresholds) (Alert, bool) {
	v, ok := current.Variance.Get()
	if !ok || !greater(v, th.HighVariance) {
		return Alert{}, false
	}
	rate, _ := current.Rate.Get()
	return Alert{
		Severity: Critical,
		Code:     CodeExceedsTarget,
		Message: fmt.Sprintf(
			"%s scrap rate %.2f exceeds target %.2f by %.2f",
			current.Label, rate, current.TargetRate, v,
		),
	}, true
}

func risingTrend(_ *KPI, trend Trend, th Thresholds) (Alert, bool) {
	window, ok := trendWindow(trend, th)
	if !ok || Classify(window, th).Shape != Increasing {
		return Alert{}, false
	}
	return Alert{
		Severity: Warning,
		Code:     CodeRisingTrend,
		Message:  fmt.Sprintf("Scrap rate rose over the last %d periods", len(window)),
	}, true
}

func suddenSpike(_ *KPI, trend Trend, th Thresholds) (Alert, bool) {
	c := Classify(trend, th)
	if c.Shape == InsufficientData || !c.Abrupt {
		return Alert{}, false
	}
	last := trend[len(trend)-1]
	prev := trend[len(trend)-2]
	return Alert{
		Severity: Warning,
		Code:     CodeSuddenSpike,
		Message: fmt.Sprintf(
			"%s scrap rate %s jumped more than %.0f%% over %s (%s)",
			last.Label, last.KPI.Rate, th.AbruptChange*100, prev.Label, prev.KPI.Rate,
		),
	}, true
}

func sustainedCompliance(_ *KPI, trend Trend, th Thresholds) (Alert, bool) {
	window, ok := trendWindow(trend, th)
	if !ok {
		return Alert{}, false
	}
	for _, p := range window {
		rate, defined := p.KPI.Rate.Get()
		if !defined || greater(rate, p.KPI.TargetRate) {
			return Alert{}, false
		}
	}
	return Alert{
		Severity: Success,
		Code:     CodeSustainedCompliance,
		Message:  fmt.Sprintf("Scrap rate met target for %d consecutive periods", len(window)),
	}, true
}

func summary(current *KPI) Alert {
	msg := fmt.Sprintf("%s: no production hours recorded", current.Label)
	if rate, ok := current.Rate.Get(); ok {
		msg = fmt.Sprintf(
			"%s scrap rate %.2f against target %.2f (%s over %s hours)",
			current.Label, rate, current.TargetRate,
			current.TotalAmount.StringFixed(2), current.TotalHours.StringFixed(2),
		)
	}
	return Alert{Severity: Info, Code: CodeSummary, Message: msg}
}

// trendWindow returns the trailing window of the trend when it spans at
// least TrendWindow (minimum 3) points and none of them is a gap.
func trendWindow(trend Trend, th Thresholds) (Trend, bool) {
	size := max(th.TrendWindow, 3)
	if len(trend) < size {
		return nil, false
	}
	window := trend.Tail(size)
	if !window.Gapless() {
		return nil, false
	}
	return window, true
}
