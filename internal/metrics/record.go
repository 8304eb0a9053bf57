package metrics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one scrap observation. Amount is the scrap cost; Hours is the
// production time booked against it and may be absent.
type Record struct {
	Date        time.Time           `json:"date"`
	Amount      decimal.Decimal     `json:"amount"`
	Hours       decimal.NullDecimal `json:"hours"`
	Item        string              `json:"item"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
}

// Dimension selects the grouping key for top-N breakdowns.
type Dimension string

const (
	DimensionItem     Dimension = "item"
	DimensionLocation Dimension = "location"
)

// ParseDimension parses a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionItem, DimensionLocation:
		return d, nil
	default:
		return "", fmt.Errorf("%w %q: must be item or location", ErrInvalidDimension, s)
	}
}

// Group returns the record's key and display label for the dimension.
// Items are labeled by description and fall back to the item code.
func (r Record) Group(d Dimension) (key, label string) {
	switch d {
	case DimensionLocation:
		return r.Location, r.Location
	default:
		if r.Description != "" {
			return r.Item, r.Description
		}
		return r.Item, r.Item
	}
}
