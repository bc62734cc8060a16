package tiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/krawl-app/krawl-offline/internal/filex"
	"github.com/krawl-app/krawl-offline/internal/logging"
)

// Cache stores downloaded tiles on the filesystem, grouped into per-trail
// buckets so removing a trail evicts exactly its tiles.
type Cache struct {
	root   string
	logger logging.Logger
}

// NewCache opens (creating if needed) a tile cache rooted at dir.
func NewCache(dir string, logger logging.Logger) (*Cache, error) {
	if err := filex.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create tile cache dir: %w", err)
	}
	return &Cache{root: dir, logger: logger}, nil
}

func (c *Cache) tilePath(bucket string, tile Coordinate) string {
	return filepath.Join(c.root, bucket, fmt.Sprintf("%d", tile.Z), fmt.Sprintf("%d_%d.png", tile.X, tile.Y))
}

// Has reports whether the tile is already cached in bucket.
func (c *Cache) Has(bucket string, tile Coordinate) bool {
	_, err := os.Stat(c.tilePath(bucket, tile))
	return err == nil
}

// Put writes tile data into bucket, overwriting any previous copy.
func (c *Cache) Put(bucket string, tile Coordinate, data []byte) error {
	path := c.tilePath(bucket, tile)
	if err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// BucketSize returns the total bytes cached for one bucket. A bucket that was
// never written reports zero.
func (c *Cache) BucketSize(bucket string) (int64, error) {
	return filex.DirSize(filepath.Join(c.root, bucket))
}

// Size returns the total bytes held by the whole cache.
func (c *Cache) Size() (int64, error) {
	return filex.DirSize(c.root)
}

// ClearBucket removes every tile in bucket. Clearing a bucket that was never
// written is a no-op, logged as a warning so eviction mismatches stay visible.
func (c *Cache) ClearBucket(ctx context.Context, bucket string) error {
	dir := filepath.Join(c.root, bucket)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		c.logger.Warn(ctx, "tile bucket does not exist, nothing to clear", "bucket", bucket)
		return nil
	}
	return os.RemoveAll(dir)
}

// Clear removes all cached tiles across all buckets.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
