// Package reader serves trail and gem reads network-first with a local
// fallback, so screens keep working offline once a trail is downloaded.
package reader

import (
	"context"
	"sort"
	"time"

	"github.com/krawl-app/krawl-offline/internal/api"
	"github.com/krawl-app/krawl-offline/internal/common"
	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/netx"
	"github.com/krawl-app/krawl-offline/internal/store/gems"
	"github.com/krawl-app/krawl-offline/internal/store/trails"
)

// Source reports where a read was served from.
type Source string

const (
	SourceNetwork Source = "network"
	SourceOffline Source = "offline"
)

// The network gets this long before the reader gives up and falls back to
// the local store.
const networkReadTimeout = 5 * time.Second

// Reader answers reads, preferring fresh data but never blocking on a dead
// network.
type Reader struct {
	api    api.Client
	trails trails.Repository
	gems   gems.Repository
	online netx.Checker
	logger logging.Logger

	networkTimeout time.Duration
}

func NewReader(client api.Client, trailRepo trails.Repository, gemRepo gems.Repository, online netx.Checker, logger logging.Logger) *Reader {
	return &Reader{
		api:            client,
		trails:         trailRepo,
		gems:           gemRepo,
		online:         online,
		logger:         logger,
		networkTimeout: networkReadTimeout,
	}
}

// ReadTrail returns the trail, trying the network first when online and
// falling back to the downloaded snapshot. common.ErrNotFound means neither
// side has it.
func (r *Reader) ReadTrail(ctx context.Context, trailID string) (*models.TrailDetail, Source, error) {
	if r.online.IsOnline(ctx) {
		nctx, cancel := context.WithTimeout(ctx, r.networkTimeout)
		trail, err := r.api.GetTrail(nctx, trailID)
		cancel()
		if err == nil {
			return trail, SourceNetwork, nil
		}
		r.logger.Warn(ctx, "network trail read failed, trying offline store", "trailId", trailID, "error", err)
	}

	rec, err := r.trails.Get(ctx, trailID)
	if err != nil {
		return nil, SourceOffline, err
	}
	if rec == nil {
		return nil, SourceOffline, common.ErrNotFound
	}
	return &rec.Data, SourceOffline, nil
}

// ReadGem returns the gem, network-first with local fallback.
func (r *Reader) ReadGem(ctx context.Context, gemID string) (*models.GemDetail, Source, error) {
	if r.online.IsOnline(ctx) {
		nctx, cancel := context.WithTimeout(ctx, r.networkTimeout)
		gem, err := r.api.GetGem(nctx, gemID)
		cancel()
		if err == nil {
			return gem, SourceNetwork, nil
		}
		r.logger.Warn(ctx, "network gem read failed, trying offline store", "gemId", gemID, "error", err)
	}

	rec, err := r.gems.Get(ctx, gemID)
	if err != nil {
		return nil, SourceOffline, err
	}
	if rec == nil {
		return nil, SourceOffline, common.ErrNotFound
	}
	return &rec.Data, SourceOffline, nil
}

// TrailGems reconstructs the downloaded trail's gems in sequence order. Refs
// whose gem was never fetched (a partial download) are skipped; the trail
// view simply has a gap there.
func (r *Reader) TrailGems(ctx context.Context, trailID string) ([]models.GemDetail, error) {
	rec, err := r.trails.Get(ctx, trailID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, common.ErrNotFound
	}

	stored, err := r.gems.GetByTrailID(ctx, trailID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.GemDetail, len(stored))
	for i := range stored {
		byID[stored[i].ID] = &stored[i].Data
	}

	refs := make([]models.TrailGemRef, len(rec.Data.Gems))
	copy(refs, rec.Data.Gems)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	result := make([]models.GemDetail, 0, len(refs))
	for _, ref := range refs {
		gem, ok := byID[ref.GemID]
		if !ok {
			r.logger.Debug(ctx, "gem missing from snapshot, skipping", "trailId", trailID, "gemId", ref.GemID)
			continue
		}
		result = append(result, *gem)
	}
	return result, nil
}
