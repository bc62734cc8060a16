package drafts

import (
	"context"
	"time"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Repository persists time-boxed local drafts. Expiry queries take the
// current time as an argument so callers (and tests) control the clock.
type Repository interface {
	// Put upserts a draft record by id.
	Put(ctx context.Context, record *models.DraftRecord) error

	// Get returns a draft by id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.DraftRecord, error)

	// GetAll returns every draft ordered by creation time.
	GetAll(ctx context.Context) ([]models.DraftRecord, error)

	// GetByOwner returns the drafts belonging to one owner.
	GetByOwner(ctx context.Context, ownerID string) ([]models.DraftRecord, error)

	// GetByType returns the drafts of one type.
	GetByType(ctx context.Context, draftType models.DraftType) ([]models.DraftRecord, error)

	// GetExpired returns drafts whose expires_at is before now.
	GetExpired(ctx context.Context, now time.Time) ([]models.DraftRecord, error)

	// Delete removes a draft. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every draft whose expires_at is before now and
	// returns the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
