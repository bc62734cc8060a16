package downloads

import (
	"context"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Repository persists download-progress checkpoints. The record is the
// reload-survivable source of truth for download state, so every status or
// progress change goes through Put.
type Repository interface {
	// Put upserts a download record by trail id.
	Put(ctx context.Context, record *models.DownloadRecord) error

	// Get returns a download record by trail id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.DownloadRecord, error)

	// GetAll returns every download record ordered by start time.
	GetAll(ctx context.Context) ([]models.DownloadRecord, error)

	// GetByStatus returns the records currently in the given status.
	GetByStatus(ctx context.Context, status models.DownloadStatus) ([]models.DownloadRecord, error)

	// Delete removes a download record. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}
