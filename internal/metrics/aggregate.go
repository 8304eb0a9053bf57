// Package metrics aggregates scrap records into period KPIs and derives
// comparisons, trends and alerts from them. Every function is pure: inputs
// are an immutable Dataset and an explicit Config.
package metrics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// KPI is the aggregate of the records in one date range.
// Rate is undefined when no production hours were booked.
type KPI struct {
	Range       period.Range    `json:"range"`
	Label       string          `json:"label"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	Rate        Value           `json:"rate"`
	TargetRate  float64         `json:"target_rate"`
	Variance    Value           `json:"variance"`
	VariancePct Value           `json:"variance_pct"`
	MeetsTarget bool            `json:"meets_target"`
	RecordCount int             `json:"record_count"`
}

// HasData reports whether any record fell in the KPI's range.
func (k *KPI) HasData() bool {
	return k != nil && k.RecordCount > 0
}

// Contributor is one entry of a top-N breakdown.
type Contributor struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Share  Value           `json:"share"`
}

// Aggregate reduces the records in r to a KPI. Sums are exact, so the
// result does not depend on record order.
func Aggregate(ds *Dataset, r period.Range, target float64, label string) *KPI {
	kpi := &KPI{
		Range:       r,
		Label:       label,
		TotalAmount: decimal.Zero,
		TotalHours:  decimal.Zero,
		TargetRate:  target,
	}

	for rec := range ds.Within(r) {
		kpi.RecordCount++
		kpi.TotalAmount = kpi.TotalAmount.Add(rec.Amount)
		if rec.Hours.Valid {
			kpi.TotalHours = kpi.TotalHours.Add(rec.Hours.Decimal)
		}
	}

	if !kpi.TotalHours.IsPositive() {
		return kpi
	}

	rate := kpi.TotalAmount.Div(kpi.TotalHours)
	tgt := decimal.NewFromFloat(target)
	variance := rate.Sub(tgt)

	kpi.Rate = fromDecimal(rate)
	kpi.Variance = fromDecimal(variance)
	kpi.MeetsTarget = rate.LessThanOrEqual(tgt)
	if !tgt.IsZero() {
		kpi.VariancePct = fromDecimal(variance.Div(tgt))
	}
	return kpi
}

// TopN groups the records in r by dimension, orders the groups by summed
// amount descending with ties broken by label ascending, and returns at
// most n of them.
func TopN(ds *Dataset, r period.Range, dim Dimension, n int) []Contributor {
	if n <= 0 {
		return []Contributor{}
	}

	groups := make(map[string]*Contributor)
	total := decimal.Zero

	for rec := range ds.Within(r) {
		key, label := rec.Group(dim)
		total = total.Add(rec.Amount)

		g, ok := groups[key]
		if !ok {
			g = &Contributor{Key: key, Label: label, Amount: decimal.Zero}
			groups[key] = g
		}
		g.Amount = g.Amount.Add(rec.Amount)
		g.Label = preferLabel(key, g.Label, label)
	}

	out := make([]Contributor, 0, len(groups))
	for _, g := range groups {
		if !total.IsZero() {
			g.Share = fromDecimal(g.Amount.Div(total))
		}
		out = append(out, *g)
	}

	slices.SortFunc(out, func(a, b Contributor) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// preferLabel picks a deterministic group label: any descriptive label wins
// over the bare key, and the smallest descriptive label wins among several.
func preferLabel(key, current, candidate string) string {
	switch {
	case current == key:
		return candidate
	case candidate == key:
		return current
	default:
		return min(current, candidate)
	}
}
