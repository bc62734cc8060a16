package trails

import (
	"context"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Repository describes CRUD and query operations for locally downloaded
// trail snapshots. Implementations are backed by the local SQLite database.
type Repository interface {
	// Put upserts a trail record by id. The caller supplies the full record;
	// there is no partial merge.
	Put(ctx context.Context, record *models.TrailRecord) error

	// Get returns a trail record by id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.TrailRecord, error)

	// GetAll returns all downloaded trails ordered by download time.
	GetAll(ctx context.Context) ([]models.TrailRecord, error)

	// Delete removes a trail record. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}
