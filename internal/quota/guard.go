package quota

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/krawl-app/krawl-offline/internal/common"
	"github.com/krawl-app/krawl-offline/internal/models"
)

// PhotoSizeEstimateBytes is the flat per-photo allowance used when estimating
// a trail's footprint. Photos are cached by URL outside the store, so the
// real size is unknown at admission time.
const PhotoSizeEstimateBytes = 200 * 1024

// SizeEstimator predicts the stored footprint of a trail payload. It is an
// admission-control heuristic, not exact accounting; implementations may be
// swapped without touching the guard's call sites.
type SizeEstimator interface {
	EstimateTrailSize(trail *models.TrailDetail) int64
}

// HeuristicSizer sums the JSON encoding of the remote payload plus a flat
// allowance per inlined gem photo.
type HeuristicSizer struct{}

func (HeuristicSizer) EstimateTrailSize(trail *models.TrailDetail) int64 {
	var size int64
	if b, err := json.Marshal(trail); err == nil {
		size += int64(len(b))
	}
	for _, gem := range trail.Gems {
		size += int64(len(gem.Photos)) * PhotoSizeEstimateBytes
	}
	return size
}

// Guard answers "is there room for this download" questions.
type Guard struct {
	storage StorageEstimator
	sizer   SizeEstimator
}

func NewGuard(storage StorageEstimator) *Guard {
	return &Guard{storage: storage, sizer: HeuristicSizer{}}
}

// EstimateTrailSize delegates to the configured size estimator.
func (g *Guard) EstimateTrailSize(trail *models.TrailDetail) int64 {
	return g.sizer.EstimateTrailSize(trail)
}

// HasEnoughStorage returns nil when requiredBytes fit in the available space,
// and common.ErrInsufficientStorage when they do not. Failure to measure the
// volume is reported as its own error; the caller decides whether to admit.
func (g *Guard) HasEnoughStorage(ctx context.Context, requiredBytes int64) error {
	info, err := g.storage.Estimate(ctx)
	if err != nil {
		return fmt.Errorf("storage estimate failed: %w", err)
	}
	if uint64(requiredBytes) > info.AvailableBytes {
		return fmt.Errorf("%w: need %s, have %s",
			common.ErrInsufficientStorage,
			FormatBytes(requiredBytes),
			FormatBytes(int64(info.AvailableBytes)))
	}
	return nil
}

// IsLow reports whether available space has dropped under the warning
// threshold. Errors count as not-low; the admission check is the hard gate.
func (g *Guard) IsLow(ctx context.Context) bool {
	info, err := g.storage.Estimate(ctx)
	if err != nil {
		return false
	}
	return info.AvailableBytes < common.LowStorageThresholdBytes
}

// Usage returns the current storage view for display purposes.
func (g *Guard) Usage(ctx context.Context) (*StorageInfo, error) {
	return g.storage.Estimate(ctx)
}

// FormatBytes renders a byte count for humans: "512 B", "1.2 MB", "3.4 GB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
