package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/netx"
	"github.com/krawl-app/krawl-offline/internal/store/syncqueue"
)

const defaultSyncInterval = 30 * time.Second

// Scheduler runs the processor periodically and on demand. A compare-and-swap
// gate guarantees a single drain at a time even when a manual SyncNow races
// the ticker.
type Scheduler struct {
	processor *Processor
	repo      syncqueue.Repository
	online    netx.Checker
	logger    logging.Logger

	interval time.Duration
	syncing  atomic.Bool
}

func NewScheduler(processor *Processor, repo syncqueue.Repository, online netx.Checker, logger logging.Logger) *Scheduler {
	return &Scheduler{
		processor: processor,
		repo:      repo,
		online:    online,
		logger:    logger,
		interval:  defaultSyncInterval,
	}
}

// SetInterval overrides the drain interval. Call before Run.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval > 0 {
		s.interval = interval
	}
}

// Run drains once immediately, then on every tick until ctx is cancelled.
// It blocks; callers start it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.SyncNow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncNow(ctx)
		}
	}
}

// SyncNow triggers a drain unless one is already running. It returns true
// when this call performed (or attempted) the drain.
func (s *Scheduler) SyncNow(ctx context.Context) bool {
	if !s.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer s.syncing.Store(false)

	if !s.online.IsOnline(ctx) {
		return true
	}

	pending, err := s.repo.GetByStatus(ctx, models.SyncPending)
	if err != nil {
		s.logger.Error(ctx, "failed to read sync queue", "error", err)
		return true
	}
	if len(pending) == 0 {
		return true
	}

	if err := s.processor.ProcessQueue(ctx); err != nil {
		s.logger.Error(ctx, "sync queue drain failed", "error", err)
	}
	return true
}
