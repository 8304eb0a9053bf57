package records

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/scrapmetrics/internal/metrics"
	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
	"github.com/JaimeStill/scrapmetrics/pkg/query"
	"github.com/JaimeStill/scrapmetrics/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a record repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "records"),
		pagination: pagination,
	}
}

func (r *repo) Handler(source Reloader, maxUploadSize int64) *Handler {
	return NewHandler(r, source, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Row], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Item", "Description", "Location")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRow)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Import(ctx context.Context, recs []metrics.Record) (int, error) {
	if len(recs) == 0 {
		return 0, ErrEmptyImport
	}

	q := `
		INSERT INTO production_records(record_date, item, description, location, amount, hours)
		VALUES ($1, $2, $3, $4, $5, $6)`

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		return repository.ExecBatch(ctx, tx, q, recs, func(rec metrics.Record) []any {
			return []any{rec.Date, rec.Item, rec.Description, rec.Location, rec.Amount, rec.Hours}
		})
	})

	if err != nil {
		return 0, fmt.Errorf("import records: %w", repository.MapError(err, sql.ErrNoRows, ErrInvalidImport))
	}

	r.logger.Info("records imported", "count", n)
	return n, nil
}

func (r *repo) Identity(ctx context.Context) (string, error) {
	var (
		count int64
		stamp time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(updated_at), 'epoch'::timestamptz)
		FROM production_records`,
	).Scan(&count, &stamp)
	if err != nil {
		return "", fmt.Errorf("record identity: %w", err)
	}
	return identityToken("production_records", count, stamp), nil
}

// Load reads the identity before the rows, so a concurrent write yields a
// stale identity and a reload on the next check rather than a missed one.
func (r *repo) Load(ctx context.Context) (*metrics.Dataset, error) {
	id, err := r.Identity(ctx)
	if err != nil {
		return nil, err
	}

	q := `
		SELECT record_date, item, description, location, amount, hours
		FROM production_records
		ORDER BY record_date, id`

	recs, err := repository.QueryMany(ctx, r.db, q, nil, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	return metrics.NewDataset(id, recs), nil
}

func scanRecord(s repository.Scanner) (metrics.Record, error) {
	var rec metrics.Record
	err := s.Scan(
		&rec.Date,
		&rec.Item,
		&rec.Description,
		&rec.Location,
		&rec.Amount,
		&rec.Hours,
	)
	return rec, err
}
