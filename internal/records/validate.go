package records

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// Severity grades a validation issue. Only errors reject an import.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue codes.
const (
	CodeMissingColumns = "missing_columns"
	CodeMissingValue   = "missing_value"
	CodeInvalidDate    = "invalid_date"
	CodeInvalidNumber  = "invalid_number"
	CodeFutureDate     = "future_date"
	CodeStaleDate      = "stale_date"
	CodeDuplicate      = "duplicate"
	CodeOutlier        = "outlier"
)

const (
	staleAfter     = 5 * 365 * 24 * time.Hour
	outlierMinimum = 10
	outlierFactor  = 3
)

// Issue is a single validation finding. Row is the 1-based CSV line, or
// zero for findings that span the whole file.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Row      int      `json:"row,omitempty"`
	Count    int      `json:"count,omitempty"`
	Message  string   `json:"message"`
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	return slices.ContainsFunc(issues, func(i Issue) bool {
		return i.Severity == SeverityError
	})
}

// Validate inspects parsed records for data-quality problems relative to
// now. It never returns error-severity issues; those come from Parse.
func Validate(records []metrics.Record, now time.Time) []Issue {
	var issues []Issue
	if issue := futureDates(records, now); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := staleDates(records, now); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := duplicates(records); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := outliers(records); issue != nil {
		issues = append(issues, *issue)
	}
	return issues
}

func futureDates(records []metrics.Record, now time.Time) *Issue {
	today := period.Day(now)
	n := 0
	for _, r := range records {
		if r.Date.After(today) {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &Issue{
		Severity: SeverityWarning,
		Code:     CodeFutureDate,
		Count:    n,
		Message:  fmt.Sprintf("%d records are dated after %s", n, today.Format(time.DateOnly)),
	}
}

func staleDates(records []metrics.Record, now time.Time) *Issue {
	cutoff := period.Day(now.Add(-staleAfter))
	n := 0
	for _, r := range records {
		if r.Date.Before(cutoff) {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &Issue{
		Severity: SeverityInfo,
		Code:     CodeStaleDate,
		Count:    n,
		Message:  fmt.Sprintf("%d records are older than %s", n, cutoff.Format(time.DateOnly)),
	}
}

type dupKey struct {
	date     time.Time
	item     string
	location string
}

// duplicates counts every record that shares (date, item, location) with
// another, including the first occurrence.
func duplicates(records []metrics.Record) *Issue {
	counts := make(map[dupKey]int, len(records))
	for _, r := range records {
		counts[dupKey{period.Day(r.Date), r.Item, r.Location}]++
	}
	n := 0
	for _, c := range counts {
		if c > 1 {
			n += c
		}
	}
	if n == 0 {
		return nil
	}
	return &Issue{
		Severity: SeverityWarning,
		Code:     CodeDuplicate,
		Count:    n,
		Message:  fmt.Sprintf("%d records share date, item and location with another record", n),
	}
}

func outliers(records []metrics.Record) *Issue {
	if len(records) < outlierMinimum {
		return nil
	}
	amounts := make([]decimal.Decimal, len(records))
	for i, r := range records {
		amounts[i] = r.Amount
	}
	slices.SortFunc(amounts, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	q1 := quantile(amounts, 0.25)
	q3 := quantile(amounts, 0.75)
	spread := q3.Sub(q1).Mul(decimal.NewFromInt(outlierFactor))
	lower, upper := q1.Sub(spread), q3.Add(spread)

	n := 0
	for _, a := range amounts {
		if a.LessThan(lower) || a.GreaterThan(upper) {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &Issue{
		Severity: SeverityInfo,
		Code:     CodeOutlier,
		Count:    n,
		Message: fmt.Sprintf("%d amounts fall outside [%s, %s]",
			n, lower.StringFixed(2), upper.StringFixed(2)),
	}
}

// quantile linearly interpolates between the closest ranks of sorted.
func quantile(sorted []decimal.Decimal, q float64) decimal.Decimal {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := decimal.NewFromFloat(pos - float64(lo))
	return sorted[lo].Add(sorted[lo+1].Sub(sorted[lo]).Mul(frac))
}
