// Package download orchestrates taking a trail offline: fetch the trail and
// its gems, cache the covering map tiles, and persist the snapshot in one
// all-or-nothing step at the end.
package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/krawl-app/krawl-offline/internal/api"
	"github.com/krawl-app/krawl-offline/internal/common"
	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/quota"
	"github.com/krawl-app/krawl-offline/internal/store/downloads"
	"github.com/krawl-app/krawl-offline/internal/store/gems"
	"github.com/krawl-app/krawl-offline/internal/store/trails"
	"github.com/krawl-app/krawl-offline/internal/tiles"
)

// Progress is a point-in-time view of one trail download, delivered to the
// caller's callback and readable later via Progress().
type Progress struct {
	TrailID         string
	Status          models.DownloadStatus
	Progress        int
	CurrentStep     string
	DownloadedBytes int64
	TotalBytes      int64
}

// ProgressFunc receives download progress updates.
type ProgressFunc func(Progress)

// TileBucket names the tile-cache bucket holding one trail's tiles.
func TileBucket(trailID string) string {
	return "trail-" + trailID
}

// Orchestrator runs trail downloads. One download per trail at a time;
// distinct trails may download concurrently.
type Orchestrator struct {
	api       api.Client
	trails    trails.Repository
	gems      gems.Repository
	downloads downloads.Repository
	guard     *quota.Guard
	tiles     *tiles.Downloader
	tileCache *tiles.Cache
	logger    logging.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(
	client api.Client,
	trailRepo trails.Repository,
	gemRepo gems.Repository,
	downloadRepo downloads.Repository,
	guard *quota.Guard,
	tileDownloader *tiles.Downloader,
	tileCache *tiles.Cache,
	logger logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		api:       client,
		trails:    trailRepo,
		gems:      gemRepo,
		downloads: downloadRepo,
		guard:     guard,
		tiles:     tileDownloader,
		tileCache: tileCache,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// DownloadTrail takes the trail offline. It returns
// common.ErrAlreadyInProgress when a download for the same trail is running
// and common.ErrAlreadyDownloaded when a snapshot already exists; callers
// wanting a refresh go through RemoveDownload first (or the updates service).
func (o *Orchestrator) DownloadTrail(ctx context.Context, trailID string, onProgress ProgressFunc) error {
	existing, err := o.trails.Get(ctx, trailID)
	if err != nil {
		return err
	}
	if existing != nil {
		return common.ErrAlreadyDownloaded
	}

	o.mu.Lock()
	if _, busy := o.inFlight[trailID]; busy {
		o.mu.Unlock()
		return common.ErrAlreadyInProgress
	}
	o.inFlight[trailID] = struct{}{}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inFlight, trailID)
		o.mu.Unlock()
	}()

	return o.perform(ctx, trailID, onProgress)
}

func (o *Orchestrator) perform(ctx context.Context, trailID string, onProgress ProgressFunc) error {
	rec := &models.DownloadRecord{
		ID:          trailID,
		Status:      models.DownloadDownloading,
		Progress:    0,
		CurrentStep: "Fetching trail data...",
		StartedAt:   time.Now().UTC(),
	}

	report := func() {
		if onProgress != nil {
			onProgress(Progress{
				TrailID:         trailID,
				Status:          rec.Status,
				Progress:        rec.Progress,
				CurrentStep:     rec.CurrentStep,
				DownloadedBytes: rec.DownloadedBytes,
				TotalBytes:      rec.TotalBytes,
			})
		}
	}

	checkpoint := func(ctx context.Context) {
		if err := o.downloads.Put(ctx, rec); err != nil {
			o.logger.Warn(ctx, "failed to checkpoint download record", "trailId", trailID, "error", err)
		}
		report()
	}

	fail := func(err error) error {
		rec.Status = models.DownloadFailed
		rec.Error = err.Error()
		rec.CurrentStep = "Error: " + err.Error()
		// The record must survive even when ctx is what killed us.
		checkpoint(context.WithoutCancel(ctx))
		return err
	}

	checkpoint(ctx)

	trail, err := o.api.GetTrail(ctx, trailID)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch trail: %w", err))
	}
	if trailJSON, merr := json.Marshal(trail); merr == nil {
		rec.DownloadedBytes += int64(len(trailJSON))
	}

	rec.TotalBytes = o.guard.EstimateTrailSize(trail)
	if err := o.guard.HasEnoughStorage(ctx, rec.TotalBytes); err != nil {
		return fail(err)
	}

	rec.CurrentStep = "Downloading gem data..."
	rec.Progress = 20
	checkpoint(ctx)

	gemRecords := o.fetchGems(ctx, trail, rec, checkpoint)

	rec.CurrentStep = "Downloading map tiles..."
	rec.Progress = 50
	checkpoint(ctx)

	if err := o.downloadTiles(ctx, trailID, gemRecords, rec, report); err != nil {
		return fail(err)
	}

	rec.CurrentStep = "Saving data..."
	rec.Progress = 90
	checkpoint(ctx)

	snapshot := snapshotTrail(trail)
	trailRecord := &models.TrailRecord{
		ID:           trailID,
		Data:         *snapshot,
		Version:      trail.UpdatedAt,
		DownloadedAt: time.Now().UTC(),
		SizeBytes:    rec.DownloadedBytes,
	}
	if err := o.trails.Put(ctx, trailRecord); err != nil {
		return fail(fmt.Errorf("failed to save trail: %w", err))
	}
	if len(gemRecords) > 0 {
		if err := o.gems.PutAll(ctx, gemRecords); err != nil {
			// A trail snapshot without its gems must not survive; roll the
			// trail record back so the download reads as never-happened.
			if derr := o.trails.Delete(ctx, trailID); derr != nil {
				o.logger.Warn(ctx, "failed to roll back trail record", "trailId", trailID, "error", derr)
			}
			return fail(fmt.Errorf("failed to save gems: %w", err))
		}
	}

	now := time.Now().UTC()
	rec.Status = models.DownloadCompleted
	rec.Progress = 100
	rec.CurrentStep = "Download complete!"
	rec.CompletedAt = &now
	checkpoint(ctx)

	o.logger.Info(ctx, "trail downloaded",
		"trailId", trailID, "gems", len(gemRecords), "bytes", rec.DownloadedBytes)
	return nil
}

// fetchGems pulls every referenced gem, skipping individual failures so one
// bad gem does not sink the trail. Progress moves linearly from 20 to 50.
func (o *Orchestrator) fetchGems(ctx context.Context, trail *models.TrailDetail, rec *models.DownloadRecord, checkpoint func(context.Context)) []models.GemRecord {
	total := len(trail.Gems)
	records := make([]models.GemRecord, 0, total)

	for i, ref := range trail.Gems {
		gemID := ref.GemID
		if gemID == "" {
			gemID = ref.ID
		}

		gem, err := o.api.GetGem(ctx, gemID)
		if err != nil {
			o.logger.Warn(ctx, "failed to download gem, skipping", "gemId", gemID, "error", err)
		} else {
			records = append(records, models.GemRecord{
				ID:           gemID,
				TrailID:      trail.ID,
				Data:         *gem,
				DownloadedAt: time.Now().UTC(),
			})
			if gemJSON, merr := json.Marshal(gem); merr == nil {
				rec.DownloadedBytes += int64(len(gemJSON))
			}
		}

		rec.Progress = 20 + (i*30)/total
		rec.CurrentStep = fmt.Sprintf("Downloading gem %d of %d...", i+1, total)
		checkpoint(ctx)
	}
	return records
}

// downloadTiles covers the trail's bounding box. Tile-level failures were
// already swallowed downstream; an error here means the context died.
func (o *Orchestrator) downloadTiles(ctx context.Context, trailID string, gemRecords []models.GemRecord, rec *models.DownloadRecord, report func()) error {
	details := make([]models.GemDetail, 0, len(gemRecords))
	for _, g := range gemRecords {
		details = append(details, g.Data)
	}

	bbox := tiles.BoundingBoxForGems(details)
	coords := tiles.TilesForBoundingBox(bbox, nil)

	err := o.tiles.DownloadAndCache(ctx, TileBucket(trailID), coords, func(downloaded, total int) {
		rec.Progress = 50 + (downloaded*40)/total
		rec.CurrentStep = fmt.Sprintf("Downloading tiles %d of %d...", downloaded, total)
		report()
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		o.logger.Warn(ctx, "tile download incomplete, continuing", "trailId", trailID, "error", err)
	}
	return nil
}

// snapshotTrail normalizes the stored copy: gem refs keep only reference
// fields (no inlined photos), ordered by their sequence number.
func snapshotTrail(trail *models.TrailDetail) *models.TrailDetail {
	snapshot := *trail
	snapshot.Gems = make([]models.TrailGemRef, len(trail.Gems))
	for i, ref := range trail.Gems {
		gemID := ref.GemID
		if gemID == "" {
			gemID = ref.ID
		}
		snapshot.Gems[i] = models.TrailGemRef{
			ID:     ref.ID,
			GemID:  gemID,
			Note:   ref.Note,
			Secret: ref.Secret,
			Order:  ref.Order,
		}
	}
	return &snapshot
}

// CancelDownload flips a running download to paused. The running goroutine is
// not preempted; if it finishes it will overwrite the record. Cancellation is
// cooperative and best-effort.
func (o *Orchestrator) CancelDownload(ctx context.Context, trailID string) error {
	rec, err := o.downloads.Get(ctx, trailID)
	if err != nil {
		return err
	}
	if rec == nil || rec.Status != models.DownloadDownloading {
		return nil
	}
	rec.Status = models.DownloadPaused
	return o.downloads.Put(ctx, rec)
}

// RemoveDownload deletes the trail snapshot, its gems, its download record
// and its tile bucket. Tile eviction failures are logged, not returned: the
// data rows are already gone and a retry would be a no-op for them.
func (o *Orchestrator) RemoveDownload(ctx context.Context, trailID string) error {
	if err := o.trails.Delete(ctx, trailID); err != nil {
		return err
	}
	if err := o.gems.DeleteByTrailID(ctx, trailID); err != nil {
		return err
	}
	if err := o.downloads.Delete(ctx, trailID); err != nil {
		return err
	}
	if err := o.tileCache.ClearBucket(ctx, TileBucket(trailID)); err != nil {
		o.logger.Warn(ctx, "failed to clear tile bucket", "trailId", trailID, "error", err)
	}
	return nil
}

// IsTrailDownloaded reports whether a snapshot exists for the trail.
func (o *Orchestrator) IsTrailDownloaded(ctx context.Context, trailID string) (bool, error) {
	rec, err := o.trails.Get(ctx, trailID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Progress returns the persisted progress for a trail download, or (nil, nil)
// when no download was ever started.
func (o *Orchestrator) Progress(ctx context.Context, trailID string) (*Progress, error) {
	rec, err := o.downloads.Get(ctx, trailID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return &Progress{
		TrailID:         trailID,
		Status:          rec.Status,
		Progress:        rec.Progress,
		CurrentStep:     rec.CurrentStep,
		DownloadedBytes: rec.DownloadedBytes,
		TotalBytes:      rec.TotalBytes,
	}, nil
}
