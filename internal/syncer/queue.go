// Package syncer queues mutations made while offline and replays them
// against the server once connectivity returns.
package syncer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/store/syncqueue"
)

// Queue is the write side of the sync queue: callers enqueue mutations here
// and the background processor drains them.
type Queue struct {
	repo syncqueue.Repository
}

func NewQueue(repo syncqueue.Repository) *Queue {
	return &Queue{repo: repo}
}

// Enqueue records a mutation for later replay. entityID is empty for create
// operations; data is empty for deletes.
func (q *Queue) Enqueue(ctx context.Context, opType models.SyncOpType, entityID string, data json.RawMessage) (*models.SyncQueueRecord, error) {
	item := &models.SyncQueueRecord{
		ID:        uuid.NewString(),
		Type:      opType,
		EntityID:  entityID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
		Status:    models.SyncPending,
	}
	if err := q.repo.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Items returns the whole queue, oldest first.
func (q *Queue) Items(ctx context.Context) ([]models.SyncQueueRecord, error) {
	return q.repo.GetAll(ctx)
}

// PendingCount reports how many items still wait for upload.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	items, err := q.repo.GetByStatus(ctx, models.SyncPending)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Remove drops one item regardless of its status.
func (q *Queue) Remove(ctx context.Context, id string) error {
	return q.repo.Delete(ctx, id)
}

// ClearCompleted sweeps items that already reached the server.
func (q *Queue) ClearCompleted(ctx context.Context) (int64, error) {
	return q.repo.DeleteCompleted(ctx)
}
