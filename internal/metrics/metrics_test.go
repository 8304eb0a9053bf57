package metrics_test

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
)

func date(y int, m time.Month, d int) time.Time {
	return period.Date(y, m, d)
}

func rec(d time.Time, amount, hours string, item, location string) metrics.Record {
	r := metrics.Record{
		Date:     d,
		Amount:   decimal.RequireFromString(amount),
		Item:     item,
		Location: location,
	}
	if hours != "" {
		r.Hours = decimal.NewNullDecimal(decimal.RequireFromString(hours))
	}
	return r
}

func point(rate float64, target float64) metrics.TrendPoint {
	return metrics.TrendPoint{
		Label: "p",
		KPI: &metrics.KPI{
			Rate:        metrics.Some(rate),
			TargetRate:  target,
			RecordCount: 1,
		},
	}
}

func gap() metrics.TrendPoint {
	return metrics.TrendPoint{Label: "gap", KPI: &metrics.KPI{}}
}

func trendOf(rates ...float64) metrics.Trend {
	t := make(metrics.Trend, 0, len(rates))
	for _, r := range rates {
		t = append(t, point(r, 0.50))
	}
	return t
}

func weekRange(t *testing.T, week, year int) period.Range {
	t.Helper()
	r, err := period.Bounds(period.ISOWeek{Week: week, Year: year})
	if err != nil {
		t.Fatalf("Bounds() error = %v", err)
	}
	return r
}

func TestEndToEndWeekComparison(t *testing.T) {
	ds := metrics.NewDataset("v1", []metrics.Record{
		rec(date(2025, 5, 19), "100", "40", "A", "L1"),
		rec(date(2025, 5, 12), "80", "40", "A", "L1"),
	})
	cfg := metrics.DefaultConfig()

	res, err := period.Resolve(period.ISOWeek{Week: 21, Year: 2025}, time.Time{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	target := cfg.Targets.For(res.Spec)
	if target != 0.50 {
		t.Fatalf("target = %v, want 0.50", target)
	}

	cur := metrics.Aggregate(ds, res.Current, target, res.Label)
	prev := metrics.Aggregate(ds, res.Previous, cfg.Targets.For(res.PreviousSpec), res.PreviousLabel)

	if rate, _ := cur.Rate.Get(); rate != 2.5 {
		t.Errorf("current rate = %v, want 2.5", cur.Rate)
	}
	if rate, _ := prev.Rate.Get(); rate != 2.0 {
		t.Errorf("previous rate = %v, want 2.0", prev.Rate)
	}

	cmp := metrics.Compare(cur, prev, cfg.Thresholds)
	if pct, ok := cmp.RateChangePct.Get(); !ok || pct != 0.25 {
		t.Errorf("RateChangePct = %v, want 0.25", cmp.RateChangePct)
	}
	if cmp.Indicator != metrics.Worsened {
		t.Errorf("Indicator = %s, want %s", cmp.Indicator, metrics.Worsened)
	}
	if abs, _ := cmp.AmountChangeAbs.Get(); abs != 20 {
		t.Errorf("AmountChangeAbs = %v, want 20", cmp.AmountChangeAbs)
	}
	if pct, ok := cmp.HoursChangePct.Get(); !ok || pct != 0 {
		t.Errorf("HoursChangePct = %v, want 0", cmp.HoursChangePct)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := []metrics.Record{
		rec(date(2025, 5, 19), "0.1", "0.3", "A", "L1"),
		rec(date(2025, 5, 20), "0.2", "0.7", "B", "L1"),
		rec(date(2025, 5, 21), "12.345", "", "C", "L2"),
		rec(date(2025, 5, 22), "3.3", "1.1", "A", "L2"),
		rec(date(2025, 5, 25), "7.77", "2.2", "D", "L3"),
		rec(date(2025, 5, 26), "999", "1", "E", "L3"),
	}
	r := weekRange(t, 21, 2025)
	want := metrics.Aggregate(metrics.NewDataset("v1", records), r, 0.5, "w")

	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 20 {
		shuffled := append([]metrics.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := metrics.Aggregate(metrics.NewDataset("v1", shuffled), r, 0.5, "w")
		if !got.TotalAmount.Equal(want.TotalAmount) || !got.TotalHours.Equal(want.TotalHours) {
			t.Fatalf("shuffle %d: totals %s/%s, want %s/%s", i, got.TotalAmount, got.TotalHours, want.TotalAmount, want.TotalHours)
		}
		if got.Rate != want.Rate || got.Variance != want.Variance {
			t.Fatalf("shuffle %d: rate %s variance %s, want %s %s", i, got.Rate, got.Variance, want.Rate, want.Variance)
		}
	}

	if want.RecordCount != 5 {
		t.Errorf("RecordCount = %d, want 5 (end date excluded)", want.RecordCount)
	}
	if !want.TotalHours.Equal(decimal.RequireFromString("4.3")) {
		t.Errorf("TotalHours = %s, want 4.3 (absent hours skipped)", want.TotalHours)
	}
}

func TestAggregateZeroHoursUndefinedRate(t *testing.T) {
	ds := metrics.NewDataset("v1", []metrics.Record{
		rec(date(2025, 5, 19), "10", "", "A", "L1"),
		rec(date(2025, 5, 20), "5", "0", "A", "L1"),
	})

	kpi := metrics.Aggregate(ds, weekRange(t, 21, 2025), 0.5, "w")
	if kpi.Rate.Valid() {
		t.Errorf("Rate = %s, want undefined", kpi.Rate)
	}
	if kpi.Variance.Valid() || kpi.VariancePct.Valid() {
		t.Error("variance should be undefined when rate is undefined")
	}
	if kpi.MeetsTarget {
		t.Error("MeetsTarget should be false when rate is undefined")
	}
	if !kpi.TotalAmount.Equal(decimal.NewFromInt(15)) {
		t.Errorf("TotalAmount = %s, want 15", kpi.TotalAmount)
	}

	data, err := json.Marshal(kpi)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["rate"] != nil {
		t.Errorf("rate json = %v, want null", raw["rate"])
	}
}

func TestAggregateVarianceAndMeetsTarget(t *testing.T) {
	ds := metrics.NewDataset("v1", []metrics.Record{
		rec(date(2025, 5, 19), "40", "100", "A", "L1"),
	})

	kpi := metrics.Aggregate(ds, weekRange(t, 21, 2025), 0.5, "w")
	if v, _ := kpi.Variance.Get(); v != -0.1 {
		t.Errorf("Variance = %v, want -0.1", kpi.Variance)
	}
	if pct, _ := kpi.VariancePct.Get(); pct != -0.2 {
		t.Errorf("VariancePct = %v, want -0.2", kpi.VariancePct)
	}
	if !kpi.MeetsTarget {
		t.Error("MeetsTarget = false, want true")
	}
}

func TestTopN(t *testing.T) {
	records := []metrics.Record{
		rec(date(2025, 5, 19), "30", "1", "I2", "L1"),
		rec(date(2025, 5, 20), "20", "1", "I2", "L2"),
		rec(date(2025, 5, 19), "50", "1", "I1", "L1"),
		rec(date(2025, 5, 21), "100", "1", "I3", "L2"),
		rec(date(2025, 5, 12), "500", "1", "I4", "L3"),
	}
	records[0].Description = "B"
	records[1].Description = "B"
	records[2].Description = "A"

	ds := metrics.NewDataset("v1", records)
	r := weekRange(t, 21, 2025)

	t.Run("ties break by label", func(t *testing.T) {
		got := metrics.TopN(ds, r, metrics.DimensionItem, 10)
		want := []string{"I3", "A", "B"}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i, label := range want {
			if got[i].Label != label {
				t.Errorf("got[%d].Label = %q, want %q", i, got[i].Label, label)
			}
		}
		if share, _ := got[0].Share.Get(); share != 0.5 {
			t.Errorf("share = %v, want 0.5", got[0].Share)
		}
	})

	t.Run("truncates to n", func(t *testing.T) {
		got := metrics.TopN(ds, r, metrics.DimensionItem, 2)
		if len(got) != 2 || got[1].Label != "A" {
			t.Errorf("got = %+v", got)
		}
	})

	t.Run("location dimension", func(t *testing.T) {
		got := metrics.TopN(ds, r, metrics.DimensionLocation, 10)
		if len(got) != 2 || got[0].Key != "L2" || !got[0].Amount.Equal(decimal.NewFromInt(120)) {
			t.Errorf("got = %+v", got)
		}
	})

	t.Run("non-positive n", func(t *testing.T) {
		if got := metrics.TopN(ds, r, metrics.DimensionItem, 0); len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func TestCompareAbsentPrevious(t *testing.T) {
	cur := &metrics.KPI{Rate: metrics.Some(0.5), RecordCount: 3}
	th := metrics.DefaultThresholds()

	for name, prev := range map[string]*metrics.KPI{
		"nil":        nil,
		"no records": {Rate: metrics.None()},
	} {
		t.Run(name, func(t *testing.T) {
			c := metrics.Compare(cur, prev, th)
			if c.Indicator != metrics.Unchanged {
				t.Errorf("Indicator = %s, want unchanged", c.Indicator)
			}
			if c.Previous != nil {
				t.Error("Previous should be absent")
			}
			for field, v := range map[string]metrics.Value{
				"rate_change_pct":   c.RateChangePct,
				"amount_change_abs": c.AmountChangeAbs,
				"amount_change_pct": c.AmountChangePct,
				"hours_change_pct":  c.HoursChangePct,
			} {
				if v.Valid() {
					t.Errorf("%s = %s, want undefined", field, v)
				}
			}
		})
	}
}

func TestCompareIndicatorThreshold(t *testing.T) {
	th := metrics.DefaultThresholds()

	tests := []struct {
		name string
		cur  float64
		prev float64
		want metrics.Indicator
	}{
		{"large drop improves", 0.40, 0.50, metrics.Improved},
		{"large rise worsens", 0.60, 0.50, metrics.Worsened},
		{"within threshold", 0.504, 0.50, metrics.Unchanged},
		{"exactly threshold", 0.505, 0.50, metrics.Unchanged},
		{"from zero rate", 0.10, 0, metrics.Worsened},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := &metrics.KPI{Rate: metrics.Some(tt.cur), RecordCount: 1}
			prev := &metrics.KPI{Rate: metrics.Some(tt.prev), RecordCount: 1}
			if got := metrics.Compare(cur, prev, th).Indicator; got != tt.want {
				t.Errorf("Indicator = %s, want %s", got, tt.want)
			}
		})
	}

	cur := &metrics.KPI{Rate: metrics.None(), RecordCount: 1}
	prev := &metrics.KPI{Rate: metrics.Some(0.5), RecordCount: 1}
	c := metrics.Compare(cur, prev, th)
	if c.RateChangePct.Valid() || c.Indicator != metrics.Unchanged {
		t.Errorf("undefined current rate: pct %s indicator %s", c.RateChangePct, c.Indicator)
	}
}

func TestClassify(t *testing.T) {
	th := metrics.DefaultThresholds()

	tests := []struct {
		name   string
		trend  metrics.Trend
		shape  metrics.Shape
		abrupt bool
	}{
		{"empty", nil, metrics.InsufficientData, false},
		{"two points", trendOf(0.5, 0.9), metrics.InsufficientData, false},
		{"strictly decreasing", trendOf(0.50, 0.45, 0.40), metrics.Decreasing, false},
		{"strictly increasing", trendOf(0.40, 0.45, 0.50), metrics.Increasing, false},
		{"flat pair breaks monotonic", trendOf(0.40, 0.40, 0.41), metrics.Stable, false},
		{"small wiggle", trendOf(0.50, 0.51, 0.50), metrics.Stable, false},
		{"large swings", trendOf(0.50, 0.70, 0.40), metrics.Volatile, false},
		{"spike", trendOf(0.40, 0.40, 0.60), metrics.Volatile, true},
		{"undefined breaks monotonic", metrics.Trend{point(0.4, 0.5), gap(), point(0.6, 0.5), point(0.7, 0.5)}, metrics.Volatile, false},
		{"no comparable pairs", metrics.Trend{point(0.4, 0.5), gap(), point(0.6, 0.5)}, metrics.InsufficientData, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metrics.Classify(tt.trend, th)
			if got.Shape != tt.shape {
				t.Errorf("Shape = %s, want %s", got.Shape, tt.shape)
			}
			if got.Abrupt != tt.abrupt {
				t.Errorf("Abrupt = %v, want %v", got.Abrupt, tt.abrupt)
			}
		})
	}
}

func codes(alerts []metrics.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Code
	}
	return out
}

func equalCodes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEvaluate(t *testing.T) {
	th := metrics.DefaultThresholds()
	r := period.Range{Start: date(2025, 5, 19), End: date(2025, 5, 26)}

	kpi := func(amount string) *metrics.KPI {
		ds := metrics.NewDataset("v1", []metrics.Record{rec(date(2025, 5, 19), amount, "100", "A", "L")})
		return metrics.Aggregate(ds, r, 0.50, "Week 21/2025")
	}

	tests := []struct {
		name  string
		cur   *metrics.KPI
		trend metrics.Trend
		want  []string
	}{
		{
			name: "variance 0.11 is critical",
			cur:  kpi("61"),
			want: []string{metrics.CodeExceedsTarget},
		},
		{
			name: "variance 0.09 falls back to summary",
			cur:  kpi("59"),
			want: []string{metrics.CodeSummary},
		},
		{
			name:  "rising trend",
			cur:   kpi("55"),
			trend: metrics.Trend{point(0.45, 0.5), point(0.50, 0.5), point(0.55, 0.5)},
			want:  []string{metrics.CodeRisingTrend},
		},
		{
			name:  "gap breaks rising trend",
			cur:   kpi("55"),
			trend: metrics.Trend{point(0.45, 0.5), point(0.50, 0.5), gap(), point(0.55, 0.5)},
			want:  []string{metrics.CodeSummary},
		},
		{
			name:  "sudden spike",
			cur:   kpi("55"),
			trend: metrics.Trend{point(0.40, 0.5), point(0.40, 0.5), point(0.55, 0.5)},
			want:  []string{metrics.CodeSuddenSpike},
		},
		{
			name:  "sustained compliance",
			cur:   kpi("42"),
			trend: metrics.Trend{point(0.45, 0.5), point(0.40, 0.5), point(0.42, 0.5)},
			want:  []string{metrics.CodeSustainedCompliance},
		},
		{
			name:  "severity ordering",
			cur:   kpi("61"),
			trend: metrics.Trend{point(0.30, 0.5), point(0.40, 0.5), point(0.50, 0.5)},
			want: []string{
				metrics.CodeExceedsTarget,
				metrics.CodeRisingTrend,
				metrics.CodeSustainedCompliance,
			},
		},
		{
			name:  "insufficient trend skips trend rules",
			cur:   kpi("45"),
			trend: metrics.Trend{point(0.30, 0.5), point(0.90, 0.5)},
			want:  []string{metrics.CodeSummary},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metrics.Evaluate(tt.cur, tt.trend, th)
			if !equalCodes(codes(got), tt.want) {
				t.Errorf("codes = %v, want %v", codes(got), tt.want)
			}
		})
	}
}

func TestEvaluateUndefinedRate(t *testing.T) {
	cur := &metrics.KPI{Label: "Week 21/2025", TargetRate: 0.5}
	got := metrics.Evaluate(cur, nil, metrics.DefaultThresholds())
	if len(got) != 1 || got[0].Severity != metrics.Info {
		t.Fatalf("alerts = %+v, want a single info summary", got)
	}
}

func TestTargetsFor(t *testing.T) {
	targets := metrics.DefaultTargets()

	tests := []struct {
		name string
		spec period.Spec
		want float64
	}{
		{"week uses thursday month", period.ISOWeek{Week: 14, Year: 2025}, 0.30},
		{"week crossing year", period.ISOWeek{Week: 1, Year: 2026}, 0.50},
		{"month", period.CalendarMonth{Month: time.September, Year: 2025}, 0.60},
		{"quarter averages months", period.CalendarQuarter{Quarter: 4, Year: 2025}, 0.40},
		{"year uses default", period.CalendarYear{Year: 2025}, 0.50},
		{"custom uses default", period.CustomRange{Start: date(2025, 1, 1), End: date(2025, 1, 2)}, 0.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := targets.For(tt.spec); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("For() = %v, want %v", got, tt.want)
			}
		})
	}

	targets.Weekly = 0.45
	if got := targets.For(period.ISOWeek{Week: 14, Year: 2025}); got != 0.45 {
		t.Errorf("weekly override = %v, want 0.45", got)
	}
}

func TestBuildTrend(t *testing.T) {
	ds := metrics.NewDataset("v1", []metrics.Record{
		rec(date(2025, 5, 5), "20", "40", "A", "L"),
		rec(date(2025, 5, 12), "24", "40", "A", "L"),
		rec(date(2025, 5, 19), "28", "40", "A", "L"),
	})

	trend, err := metrics.BuildTrend(ds, period.UnitWeek, 4, date(2025, 5, 21), metrics.DefaultTargets())
	if err != nil {
		t.Fatalf("BuildTrend() error = %v", err)
	}

	wantLabels := []string{"Week 18/2025", "Week 19/2025", "Week 20/2025", "Week 21/2025"}
	if len(trend) != len(wantLabels) {
		t.Fatalf("len = %d, want %d", len(trend), len(wantLabels))
	}
	for i, label := range wantLabels {
		if trend[i].Label != label {
			t.Errorf("trend[%d].Label = %q, want %q", i, trend[i].Label, label)
		}
	}
	if trend[0].KPI.HasData() {
		t.Error("week 18 should be a gap")
	}
	if c := metrics.Classify(trend.Tail(3), metrics.DefaultThresholds()); c.Shape != metrics.Increasing {
		t.Errorf("Shape = %s, want increasing", c.Shape)
	}
}

func TestSegmentTrend(t *testing.T) {
	ds := metrics.NewDataset("v1", []metrics.Record{
		rec(date(2025, 5, 1), "10", "20", "A", "L"),
		rec(date(2025, 5, 31), "10", "20", "A", "L"),
	})
	r := period.Range{Start: date(2025, 5, 1), End: date(2025, 6, 1)}

	trend := metrics.SegmentTrend(ds, r, 6, 0.5)
	if len(trend) != 5 {
		t.Fatalf("len = %d, want 5", len(trend))
	}

	var total int
	for _, p := range trend {
		total += p.KPI.RecordCount
	}
	if total != 2 {
		t.Errorf("records across segments = %d, want 2", total)
	}
}

func TestValueJSON(t *testing.T) {
	data, _ := json.Marshal(struct {
		A metrics.Value `json:"a"`
		B metrics.Value `json:"b"`
	}{metrics.Some(0), metrics.None()})

	if string(data) != `{"a":0,"b":null}` {
		t.Errorf("json = %s", data)
	}
}
