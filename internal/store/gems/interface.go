package gems

import (
	"context"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Repository describes CRUD and query operations for locally downloaded gems.
// The trail_id secondary index supports cascade deletion when a trail is removed.
type Repository interface {
	// Put upserts a gem record by id.
	Put(ctx context.Context, record *models.GemRecord) error

	// PutAll upserts a batch of gem records.
	PutAll(ctx context.Context, records []models.GemRecord) error

	// Get returns a gem record by id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.GemRecord, error)

	// GetAll returns every stored gem.
	GetAll(ctx context.Context) ([]models.GemRecord, error)

	// GetByTrailID returns the gems downloaded for one trail.
	GetByTrailID(ctx context.Context, trailID string) ([]models.GemRecord, error)

	// Delete removes a gem record. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteByTrailID removes every gem associated with the trail.
	DeleteByTrailID(ctx context.Context, trailID string) error
}
