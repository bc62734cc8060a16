package syncqueue

import (
	"context"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Repository persists pending offline mutations. Items are drained in
// creation order by the background processor.
type Repository interface {
	// Put upserts a queue item by id.
	Put(ctx context.Context, record *models.SyncQueueRecord) error

	// Get returns a queue item by id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.SyncQueueRecord, error)

	// GetAll returns every queue item ordered by creation time.
	GetAll(ctx context.Context) ([]models.SyncQueueRecord, error)

	// GetByStatus returns the items in the given status, oldest first.
	GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.SyncQueueRecord, error)

	// Delete removes a queue item. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteCompleted removes every completed item and returns the number removed.
	DeleteCompleted(ctx context.Context) (int64, error)
}
