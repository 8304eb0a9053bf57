package metrics

import (
	"iter"
	"slices"
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// Dataset is an immutable snapshot of records tagged with the identity of
// the source revision it was loaded from.
type Dataset struct {
	identity string
	records  []Record
}

// NewDataset copies records into a new snapshot.
func NewDataset(identity string, records []Record) *Dataset {
	return &Dataset{
		identity: identity,
		records:  slices.Clone(records),
	}
}

// Identity returns the source identity token.
func (d *Dataset) Identity() string {
	return d.identity
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// All yields every record.
func (d *Dataset) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range d.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Within yields the records whose date falls in r.
func (d *Dataset) Within(r period.Range) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, rec := range d.records {
			if !r.Contains(rec.Date) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Has reports whether any record falls in r.
func (d *Dataset) Has(r period.Range) bool {
	for range d.Within(r) {
		return true
	}
	return false
}

// Span returns the earliest and latest record dates.
func (d *Dataset) Span() (first, last time.Time, ok bool) {
	for _, r := range d.records {
		day := period.Day(r.Date)
		if !ok || day.Before(first) {
			first = day
		}
		if !ok || day.After(last) {
			last = day
		}
		ok = true
	}
	return first, last, ok
}
