package cli

import (
	"context"
	"fmt"

	"github.com/krawl-app/krawl-offline/internal/download"
	"github.com/krawl-app/krawl-offline/internal/quota"
)

// printfFn is a test seam for user-facing output.
var printfFn = func(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Download takes a trail offline, streaming progress to the terminal.
func (a *App) Download(ctx context.Context, trailID string) error {
	err := a.orchestrator.DownloadTrail(ctx, trailID, func(p download.Progress) {
		printfFn("[%3d%%] %s", p.Progress, p.CurrentStep)
	})
	if err != nil {
		printfFn("download failed: %v", err)
		return err
	}
	return nil
}

// Cancel flags a running download as paused.
func (a *App) Cancel(ctx context.Context, trailID string) error {
	if err := a.orchestrator.CancelDownload(ctx, trailID); err != nil {
		printfFn("cancel failed: %v", err)
		return err
	}
	printfFn("download %s cancelled", trailID)
	return nil
}

// Remove deletes a downloaded trail, its gems and its cached tiles.
func (a *App) Remove(ctx context.Context, trailID string) error {
	if err := a.orchestrator.RemoveDownload(ctx, trailID); err != nil {
		printfFn("remove failed: %v", err)
		return err
	}
	printfFn("trail %s removed", trailID)
	return nil
}

// Progress shows the persisted state of one download.
func (a *App) Progress(ctx context.Context, trailID string) error {
	p, err := a.orchestrator.Progress(ctx, trailID)
	if err != nil {
		return err
	}
	if p == nil {
		printfFn("no download started for %s", trailID)
		return nil
	}
	printfFn("%s: %s %d%% (%s / %s) %s",
		p.TrailID, p.Status, p.Progress,
		quota.FormatBytes(p.DownloadedBytes), quota.FormatBytes(p.TotalBytes), p.CurrentStep)
	return nil
}

// List prints every downloaded trail.
func (a *App) List(ctx context.Context) error {
	records, err := a.repos.Trails.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printfFn("no trails downloaded")
		return nil
	}
	for _, rec := range records {
		printfFn("%s  %-30s  %s  downloaded %s",
			rec.ID, rec.Data.Name, quota.FormatBytes(rec.SizeBytes),
			rec.DownloadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// ShowTrail reads one trail, network-first.
func (a *App) ShowTrail(ctx context.Context, trailID string) error {
	trail, source, err := a.reader.ReadTrail(ctx, trailID)
	if err != nil {
		printfFn("trail %s unavailable: %v", trailID, err)
		return err
	}
	printfFn("[%s] %s — %s (%d gems)", source, trail.ID, trail.Name, len(trail.Gems))
	return nil
}

// ShowGem reads one gem, network-first.
func (a *App) ShowGem(ctx context.Context, gemID string) error {
	gem, source, err := a.reader.ReadGem(ctx, gemID)
	if err != nil {
		printfFn("gem %s unavailable: %v", gemID, err)
		return err
	}
	printfFn("[%s] %s — %s (%s)", source, gem.ID, gem.Name, gem.Category)
	return nil
}

// Gems lists a downloaded trail's gems in walk order.
func (a *App) Gems(ctx context.Context, trailID string) error {
	gems, err := a.reader.TrailGems(ctx, trailID)
	if err != nil {
		printfFn("gems unavailable: %v", err)
		return err
	}
	for i, gem := range gems {
		printfFn("%2d. %s (%s)", i+1, gem.Name, gem.ID)
	}
	return nil
}

// Check compares the local snapshot version against the server.
func (a *App) Check(ctx context.Context, trailID string) error {
	status, err := a.updates.CheckForUpdate(ctx, trailID)
	if err != nil {
		printfFn("check failed: %v", err)
		return err
	}
	switch {
	case !status.Downloaded:
		printfFn("trail %s is not downloaded", trailID)
	case status.UpdateAvail:
		printfFn("trail %s is stale (local %s, remote %s)", trailID, status.LocalVersion, status.RemoteVersion)
	default:
		printfFn("trail %s is up to date", trailID)
	}
	return nil
}

// Refresh re-downloads one trail snapshot.
func (a *App) Refresh(ctx context.Context, trailID string) error {
	err := a.updates.SyncTrail(ctx, trailID, func(p download.Progress) {
		printfFn("[%3d%%] %s", p.Progress, p.CurrentStep)
	})
	if err != nil {
		printfFn("refresh failed: %v", err)
	}
	return err
}

// RefreshAll re-downloads every stale snapshot.
func (a *App) RefreshAll(ctx context.Context) error {
	return a.updates.SyncAll(ctx, func(trailID string, err error) {
		if err != nil {
			printfFn("%s: refresh failed: %v", trailID, err)
		} else {
			printfFn("%s: ok", trailID)
		}
	})
}

// Queue lists the sync queue.
func (a *App) Queue(ctx context.Context) error {
	items, err := a.queue.Items(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printfFn("sync queue is empty")
		return nil
	}
	for _, item := range items {
		line := fmt.Sprintf("%s  %-13s  %-10s  retries=%d", item.ID, item.Type, item.Status, item.RetryCount)
		if item.Error != "" {
			line += "  last error: " + item.Error
		}
		printfFn("%s", line)
	}
	return nil
}

// Sync drains the queue right now instead of waiting for the interval.
func (a *App) Sync(ctx context.Context) error {
	if !a.scheduler.SyncNow(ctx) {
		printfFn("sync already running")
		return nil
	}
	printfFn("sync finished")
	return nil
}

// Cleanup sweeps expired drafts.
func (a *App) Cleanup(ctx context.Context) error {
	n, err := a.drafts.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	printfFn("%d expired draft(s) removed", n)
	return nil
}

// Usage prints storage and tile-cache usage.
func (a *App) Usage(ctx context.Context) error {
	info, err := a.guard.Usage(ctx)
	if err != nil {
		return err
	}
	tileBytes, err := a.tileCache.Size()
	if err != nil {
		return err
	}
	printfFn("disk: %s free of %s", quota.FormatBytes(int64(info.AvailableBytes)), quota.FormatBytes(int64(info.TotalBytes)))
	printfFn("tile cache: %s", quota.FormatBytes(tileBytes))
	if a.guard.IsLow(ctx) {
		printfFn("warning: storage is low")
	}
	return nil
}
