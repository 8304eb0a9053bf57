// Package reports archives rendered period reports. Metadata lives in
// Postgres and the rendered file in blob storage.
package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrapmetrics/internal/period"
)

// Report is an archived rendered report for one period.
type Report struct {
	ID          uuid.UUID   `json:"id"`
	PeriodType  period.Kind `json:"period_type"`
	Label       string      `json:"label"`
	Fingerprint string      `json:"fingerprint"`
	Filename    string      `json:"filename"`
	ContentType string      `json:"content_type"`
	SizeBytes   int64       `json:"size_bytes"`
	PageCount   *int        `json:"page_count"`
	StorageKey  string      `json:"storage_key"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateCommand carries an uploaded report. Spec must be concrete; a
// relative spec is resolved by the caller before archiving.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Spec        period.Spec
	PageCount   *int
}
