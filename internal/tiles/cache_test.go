package tiles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krawl-app/krawl-offline/internal/logging"
)

// warnRecorder counts warnings so tests can assert on eviction logging.
type warnRecorder struct {
	logging.Logger
	warnings []string
}

func (w *warnRecorder) Warn(ctx context.Context, msg string, args ...any) {
	w.warnings = append(w.warnings, msg)
}

func TestCache_PutHasAndSizes(t *testing.T) {
	c, err := NewCache(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	tile := Coordinate{X: 3457, Y: 1929, Z: 12}
	assert.False(t, c.Has("trail-1", tile))

	require.NoError(t, c.Put("trail-1", tile, []byte("png-bytes")))
	assert.True(t, c.Has("trail-1", tile))
	assert.False(t, c.Has("trail-2", tile), "buckets are isolated")

	size, err := c.BucketSize("trail-1")
	require.NoError(t, err)
	assert.Equal(t, int64(len("png-bytes")), size)

	empty, err := c.BucketSize("never-written")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestCache_ClearBucketEvictsOnlyThatTrail(t *testing.T) {
	c, err := NewCache(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	tile := Coordinate{X: 1, Y: 1, Z: 1}
	require.NoError(t, c.Put("trail-1", tile, []byte("a")))
	require.NoError(t, c.Put("trail-2", tile, []byte("b")))

	ctx := context.Background()
	require.NoError(t, c.ClearBucket(ctx, "trail-1"))
	assert.False(t, c.Has("trail-1", tile))
	assert.True(t, c.Has("trail-2", tile))

	require.NoError(t, c.Clear())
	assert.False(t, c.Has("trail-2", tile))

	total, err := c.Size()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCache_ClearMissingBucketWarnsAndSucceeds(t *testing.T) {
	rec := &warnRecorder{Logger: logging.NewNop()}
	c, err := NewCache(t.TempDir(), rec)
	require.NoError(t, err)

	require.NoError(t, c.ClearBucket(context.Background(), "never-written"))
	require.Len(t, rec.warnings, 1)
	assert.Contains(t, rec.warnings[0], "does not exist")

	// A bucket with content clears silently.
	require.NoError(t, c.Put("trail-1", Coordinate{X: 1, Y: 1, Z: 1}, []byte("a")))
	require.NoError(t, c.ClearBucket(context.Background(), "trail-1"))
	assert.Len(t, rec.warnings, 1)
}
