package metrics

import "github.com/shopspring/decimal"

// Indicator is the qualitative direction of a comparison. Lower rates are better.
type Indicator string

const (
	Improved  Indicator = "improved"
	Worsened  Indicator = "worsened"
	Unchanged Indicator = "unchanged"
)

// Comparison relates a KPI to the previous equivalent period.
// Previous is nil when the previous period has no records, in which case
// every change field is undefined and the indicator is Unchanged.
// Percent changes are fractions: 0.25 means +25%.
type Comparison struct {
	Current         *KPI      `json:"current"`
	Previous        *KPI      `json:"previous"`
	RateChangePct   Value     `json:"rate_change_pct"`
	AmountChangeAbs Value     `json:"amount_change_abs"`
	AmountChangePct Value     `json:"amount_change_pct"`
	HoursChangePct  Value     `json:"hours_change_pct"`
	Indicator       Indicator `json:"indicator"`
}

// Compare computes deltas between current and previous.
func Compare(current, previous *KPI, th Thresholds) *Comparison {
	c := &Comparison{
		Current:   current,
		Indicator: Unchanged,
	}
	if !previous.HasData() {
		return c
	}
	c.Previous = previous

	c.AmountChangeAbs = fromDecimal(current.TotalAmount.Sub(previous.TotalAmount))
	c.AmountChangePct = relativeChange(current.TotalAmount, previous.TotalAmount)
	c.HoursChangePct = relativeChange(current.TotalHours, previous.TotalHours)

	cur, curOK := current.Rate.Get()
	prev, prevOK := previous.Rate.Get()
	if !curOK || !prevOK {
		return c
	}

	if prev == 0 {
		if cur > 0 {
			c.Indicator = Worsened
		}
		return c
	}

	change := decimal.NewFromFloat(cur).Sub(decimal.NewFromFloat(prev)).Div(decimal.NewFromFloat(prev))
	c.RateChangePct = fromDecimal(change)

	threshold := decimal.NewFromFloat(th.Improvement)
	switch {
	case change.LessThan(threshold.Neg()):
		c.Indicator = Improved
	case change.GreaterThan(threshold):
		c.Indicator = Worsened
	}
	return c
}

func relativeChange(cur, prev decimal.Decimal) Value {
	if prev.IsZero() {
		return None()
	}
	return fromDecimal(cur.Sub(prev).Div(prev))
}
