// Package records owns the raw scrap ledger: CSV import with validation,
// Postgres persistence, and the immutable dataset snapshots the metrics
// engine reads from.
package records

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
)

// Row is a stored production record.
type Row struct {
	ID          int64               `json:"id"`
	Date        time.Time           `json:"date"`
	Item        string              `json:"item"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Amount      decimal.Decimal     `json:"amount"`
	Hours       decimal.NullDecimal `json:"hours"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Record converts the row to the engine's record shape.
func (r Row) Record() metrics.Record {
	return metrics.Record{
		Date:        r.Date,
		Amount:      r.Amount,
		Hours:       r.Hours,
		Item:        r.Item,
		Description: r.Description,
		Location:    r.Location,
	}
}

// ImportResult reports the outcome of a CSV import.
type ImportResult struct {
	Inserted int     `json:"inserted"`
	Identity string  `json:"identity,omitempty"`
	Issues   []Issue `json:"issues"`
}
