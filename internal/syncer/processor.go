package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/krawl-app/krawl-offline/internal/api"
	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/netx"
	"github.com/krawl-app/krawl-offline/internal/store/syncqueue"
)

const (
	maxRetries = 5

	baseRetryDelay = time.Second
	maxRetryDelay  = time.Minute

	// Pause between items so a long queue does not hammer the server.
	defaultInterItemDelay = 500 * time.Millisecond

	// Completed items linger briefly so callers can observe the transition
	// before the record disappears.
	defaultCompletedGrace = 5 * time.Second
)

// RetryDelay returns the exponential backoff for the given retry count,
// capped at one minute: 1s, 2s, 4s, ... 60s.
func RetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		return baseRetryDelay
	}
	d := baseRetryDelay << retryCount
	if d > maxRetryDelay || d <= 0 {
		return maxRetryDelay
	}
	return d
}

// ResultFunc observes the outcome of one processed item.
type ResultFunc func(item *models.SyncQueueRecord, err error)

// Processor drains the sync queue sequentially, applying exponential backoff
// per item and giving up permanently after maxRetries.
type Processor struct {
	repo   syncqueue.Repository
	api    api.Client
	online netx.Checker
	logger logging.Logger

	onResult ResultFunc

	interItemDelay time.Duration
	completedGrace time.Duration
	now            func() time.Time
}

func NewProcessor(repo syncqueue.Repository, client api.Client, online netx.Checker, logger logging.Logger, onResult ResultFunc) *Processor {
	return &Processor{
		repo:           repo,
		api:            client,
		online:         online,
		logger:         logger,
		onResult:       onResult,
		interItemDelay: defaultInterItemDelay,
		completedGrace: defaultCompletedGrace,
		now:            time.Now,
	}
}

// ProcessQueue replays every eligible pending item, oldest first. Offline it
// is a silent no-op. Items still inside their backoff window are left for a
// later pass.
func (p *Processor) ProcessQueue(ctx context.Context) error {
	if !p.online.IsOnline(ctx) {
		return nil
	}

	items, err := p.repo.GetByStatus(ctx, models.SyncPending)
	if err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		if !p.eligible(item) {
			continue
		}
		p.processItem(ctx, item)

		if i < len(items)-1 {
			select {
			case <-time.After(p.interItemDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// eligible reports whether the item's backoff window has elapsed.
func (p *Processor) eligible(item *models.SyncQueueRecord) bool {
	if item.LastRetryAt == nil {
		return true
	}
	return p.now().UTC().After(item.LastRetryAt.Add(RetryDelay(item.RetryCount - 1)))
}

func (p *Processor) processItem(ctx context.Context, item *models.SyncQueueRecord) {
	if item.RetryCount >= maxRetries {
		item.Status = models.SyncFailed
		item.Error = "max retries exceeded"
		if err := p.repo.Put(ctx, item); err != nil {
			p.logger.Error(ctx, "failed to mark sync item failed", "id", item.ID, "error", err)
		}
		p.logger.Warn(ctx, "sync item gave up", "id", item.ID, "type", item.Type)
		return
	}

	item.Status = models.SyncProcessing
	if err := p.repo.Put(ctx, item); err != nil {
		p.logger.Error(ctx, "failed to mark sync item processing", "id", item.ID, "error", err)
		return
	}

	err := p.dispatch(ctx, item)
	if err != nil {
		retryAt := p.now().UTC()
		item.RetryCount++
		item.LastRetryAt = &retryAt
		item.Status = models.SyncPending
		item.Error = err.Error()
		if perr := p.repo.Put(ctx, item); perr != nil {
			p.logger.Error(ctx, "failed to requeue sync item", "id", item.ID, "error", perr)
		}
		p.logger.Warn(ctx, "sync item failed, will retry",
			"id", item.ID, "type", item.Type, "retryCount", item.RetryCount,
			"nextAttemptIn", RetryDelay(item.RetryCount-1), "error", err)
		if p.onResult != nil {
			p.onResult(item, err)
		}
		return
	}

	item.Status = models.SyncCompleted
	item.Error = ""
	if perr := p.repo.Put(ctx, item); perr != nil {
		p.logger.Error(ctx, "failed to mark sync item completed", "id", item.ID, "error", perr)
	}
	p.logger.Info(ctx, "sync item uploaded", "id", item.ID, "type", item.Type)
	if p.onResult != nil {
		p.onResult(item, nil)
	}

	// Sweep after a grace period; the queue view shows the completion first.
	id := item.ID
	time.AfterFunc(p.completedGrace, func() {
		if err := p.repo.Delete(context.Background(), id); err != nil {
			p.logger.Warn(context.Background(), "failed to sweep completed sync item", "id", id, "error", err)
		}
	})
}

func (p *Processor) dispatch(ctx context.Context, item *models.SyncQueueRecord) error {
	switch item.Type {
	case models.SyncCreateGem:
		return p.api.CreateGem(ctx, item.Data)
	case models.SyncCreateTrail:
		return p.api.CreateTrail(ctx, item.Data)
	case models.SyncUpdateGem:
		return p.api.UpdateGem(ctx, item.EntityID, item.Data)
	case models.SyncUpdateTrail:
		return p.api.UpdateTrail(ctx, item.EntityID, item.Data)
	case models.SyncDeleteGem:
		return p.api.DeleteGem(ctx, item.EntityID)
	case models.SyncDeleteTrail:
		return p.api.DeleteTrail(ctx, item.EntityID)
	default:
		return fmt.Errorf("unknown sync operation type: %s", item.Type)
	}
}
