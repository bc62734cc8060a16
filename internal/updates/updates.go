// Package updates keeps downloaded trail snapshots fresh: it detects stale
// versions against the server and re-downloads them in full.
package updates

import (
	"context"
	"fmt"

	"github.com/krawl-app/krawl-offline/internal/api"
	"github.com/krawl-app/krawl-offline/internal/download"
	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/store/trails"
)

// Status is the result of one staleness check. Versions are opaque stamps;
// any difference means stale.
type Status struct {
	TrailID       string
	Downloaded    bool
	UpdateAvail   bool
	LocalVersion  string
	RemoteVersion string
}

// ResultFunc observes the outcome of one trail refresh during SyncAll.
type ResultFunc func(trailID string, err error)

// Service checks for and applies snapshot updates.
type Service struct {
	api          api.Client
	trails       trails.Repository
	orchestrator *download.Orchestrator
	logger       logging.Logger
}

func NewService(client api.Client, trailRepo trails.Repository, orchestrator *download.Orchestrator, logger logging.Logger) *Service {
	return &Service{
		api:          client,
		trails:       trailRepo,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// CheckForUpdate compares the local snapshot's version stamp against the
// server's. A trail that was never downloaded reports Downloaded=false with
// no network call.
func (s *Service) CheckForUpdate(ctx context.Context, trailID string) (*Status, error) {
	local, err := s.trails.Get(ctx, trailID)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return &Status{TrailID: trailID}, nil
	}

	remote, err := s.api.GetTrail(ctx, trailID)
	if err != nil {
		return nil, fmt.Errorf("failed to check trail version: %w", err)
	}

	return &Status{
		TrailID:       trailID,
		Downloaded:    true,
		UpdateAvail:   remote.UpdatedAt != local.Version,
		LocalVersion:  local.Version,
		RemoteVersion: remote.UpdatedAt,
	}, nil
}

// SyncTrail refreshes one snapshot by removing it and downloading it again.
// There is no partial patching; the snapshot is always internally consistent.
func (s *Service) SyncTrail(ctx context.Context, trailID string, onProgress download.ProgressFunc) error {
	if err := s.orchestrator.RemoveDownload(ctx, trailID); err != nil {
		return fmt.Errorf("failed to remove stale snapshot: %w", err)
	}
	return s.orchestrator.DownloadTrail(ctx, trailID, onProgress)
}

// SyncAll walks every downloaded trail sequentially, refreshing the stale
// ones. Per-trail failures go to onResult and do not stop the walk.
func (s *Service) SyncAll(ctx context.Context, onResult ResultFunc) error {
	records, err := s.trails.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, err := s.CheckForUpdate(ctx, rec.ID)
		if err == nil && status.UpdateAvail {
			s.logger.Info(ctx, "trail snapshot stale, refreshing",
				"trailId", rec.ID, "local", status.LocalVersion, "remote", status.RemoteVersion)
			err = s.SyncTrail(ctx, rec.ID, nil)
		}

		if onResult != nil {
			onResult(rec.ID, err)
		}
		if err != nil {
			s.logger.Warn(ctx, "trail refresh failed", "trailId", rec.ID, "error", err)
		}
	}
	return nil
}
