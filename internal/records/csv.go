package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
)

// Canonical import columns.
const (
	ColumnDate        = "date"
	ColumnItem        = "item"
	ColumnDescription = "description"
	ColumnLocation    = "location"
	ColumnAmount      = "amount"
	ColumnHours       = "hours"
)

var requiredColumns = []string{ColumnDate, ColumnItem, ColumnLocation, ColumnAmount}

// Ledger exports label the columns differently.
var columnAliases = map[string]string{
	"create date":  ColumnDate,
	"record date":  ColumnDate,
	"total posted": ColumnAmount,
	"scrap":        ColumnAmount,
	"labor hours":  ColumnHours,
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Parse reads a CSV ledger. Row-level problems are reported as error
// issues rather than returned; the returned error covers unreadable input.
// Negative amounts are normalized to their absolute value.
func Parse(r io.Reader) ([]metrics.Record, []Issue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyImport
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	cols := indexColumns(header)

	var issues []Issue
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeMissingColumns,
			Message:  "missing required columns: " + strings.Join(missing, ", "),
		})
		return nil, issues, nil
	}

	var records []metrics.Record
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFile, line, err)
		}
		if blank(fields) {
			continue
		}

		rec, issue := parseRow(cols, fields, line)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		records = append(records, rec)
	}

	return records, issues, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func parseRow(cols map[string]int, fields []string, line int) (metrics.Record, *Issue) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	fail := func(code, format string, args ...any) (metrics.Record, *Issue) {
		return metrics.Record{}, &Issue{
			Severity: SeverityError,
			Code:     code,
			Row:      line,
			Message:  fmt.Sprintf(format, args...),
		}
	}

	date, err := parseDate(field(ColumnDate))
	if err != nil {
		return fail(CodeInvalidDate, "invalid date %q", field(ColumnDate))
	}

	item := field(ColumnItem)
	if item == "" {
		return fail(CodeMissingValue, "item is empty")
	}
	location := field(ColumnLocation)
	if location == "" {
		return fail(CodeMissingValue, "location is empty")
	}

	amount, err := parseNumber(field(ColumnAmount))
	if err != nil {
		return fail(CodeInvalidNumber, "invalid amount %q", field(ColumnAmount))
	}

	var hours decimal.NullDecimal
	if raw := field(ColumnHours); raw != "" {
		h, err := parseNumber(raw)
		if err != nil {
			return fail(CodeInvalidNumber, "invalid hours %q", raw)
		}
		if h.IsNegative() {
			return fail(CodeInvalidNumber, "negative hours %q", raw)
		}
		hours = decimal.NewNullDecimal(h)
	}

	return metrics.Record{
		Date:        date,
		Amount:      amount.Abs(),
		Hours:       hours,
		Item:        item,
		Description: field(ColumnDescription),
		Location:    location,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", "$", "").Replace(s)
	return decimal.NewFromString(s)
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
