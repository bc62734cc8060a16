// Package quota guards download admission against available disk space and
// estimates the footprint of trail snapshots before anything is fetched.
package quota

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// StorageInfo is a point-in-time view of the volume backing the local store.
type StorageInfo struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
}

// StorageEstimator reports usage for the volume the engine writes to.
type StorageEstimator interface {
	Estimate(ctx context.Context) (*StorageInfo, error)
}

// DiskEstimator reads real usage for the filesystem containing path.
type DiskEstimator struct {
	path string
}

func NewDiskEstimator(path string) *DiskEstimator {
	return &DiskEstimator{path: path}
}

func (e *DiskEstimator) Estimate(ctx context.Context) (*StorageInfo, error) {
	usage, err := disk.UsageWithContext(ctx, e.path)
	if err != nil {
		return nil, err
	}
	return &StorageInfo{
		TotalBytes:     usage.Total,
		UsedBytes:      usage.Used,
		AvailableBytes: usage.Free,
	}, nil
}
