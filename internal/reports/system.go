package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
	"github.com/JaimeStill/scrapmetrics/pkg/storage"
)

// System defines the public contract for report archive operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Report], error)

	Find(ctx context.Context, id uuid.UUID) (*Report, error)
	Create(ctx context.Context, cmd CreateCommand) (*Report, error)
	// Download returns the report metadata and its file. The caller must
	// close the blob body.
	Download(ctx context.Context, id uuid.UUID) (*Report, *storage.Blob, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
