package tiles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krawl-app/krawl-offline/internal/logging"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	failOn map[Coordinate]bool
}

func (f *fakeFetcher) FetchTile(ctx context.Context, tile Coordinate) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failOn[tile] {
		return nil, errors.New("upstream 503")
	}
	return []byte(fmt.Sprintf("tile-%d-%d-%d", tile.Z, tile.X, tile.Y)), nil
}

func someTiles(n int) []Coordinate {
	coords := make([]Coordinate, 0, n)
	for i := 0; i < n; i++ {
		coords = append(coords, Coordinate{X: i, Y: 0, Z: 14})
	}
	return coords
}

func TestDownloadAndCache_FillsBucketAndReportsProgress(t *testing.T) {
	cache, err := NewCache(t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	d := NewDownloader(&fakeFetcher{}, cache, logging.NewNop())

	coords := someTiles(25)
	var mu sync.Mutex
	var counts []int
	err = d.DownloadAndCache(context.Background(), "trail-1", coords, func(downloaded, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 25, total)
		counts = append(counts, downloaded)
	})
	require.NoError(t, err)

	assert.Len(t, counts, 25)
	assert.Equal(t, 25, counts[len(counts)-1])
	for _, tile := range coords {
		assert.True(t, cache.Has("trail-1", tile))
	}
}

func TestDownloadAndCache_SkipsAlreadyCached(t *testing.T) {
	cache, err := NewCache(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	coords := someTiles(5)
	require.NoError(t, cache.Put("trail-1", coords[0], []byte("old")))

	f := &fakeFetcher{}
	d := NewDownloader(f, cache, logging.NewNop())
	require.NoError(t, d.DownloadAndCache(context.Background(), "trail-1", coords, nil))

	assert.Equal(t, 4, f.calls, "cached tile is not refetched")
}

func TestDownloadAndCache_ToleratesIndividualFailures(t *testing.T) {
	cache, err := NewCache(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	coords := someTiles(5)
	f := &fakeFetcher{failOn: map[Coordinate]bool{coords[2]: true}}
	d := NewDownloader(f, cache, logging.NewNop())

	last := 0
	err = d.DownloadAndCache(context.Background(), "trail-1", coords, func(downloaded, total int) {
		last = downloaded
	})
	require.NoError(t, err)

	assert.Equal(t, 4, last, "failed tile is not counted")
	assert.False(t, cache.Has("trail-1", coords[2]))
	assert.True(t, cache.Has("trail-1", coords[4]))
}

func TestHTTPFetcher_ExpandsURLTemplate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL + "/tiles/{z}/{x}/{y}.png")
	data, err := f.FetchTile(context.Background(), Coordinate{X: 3457, Y: 1929, Z: 12})
	require.NoError(t, err)
	assert.Equal(t, "/tiles/12/3457/1929.png", gotPath)
	assert.Equal(t, []byte("png"), data)
}

func TestDownloadAndCache_HonorsCancellation(t *testing.T) {
	cache, err := NewCache(t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	d := NewDownloader(&fakeFetcher{}, cache, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = d.DownloadAndCache(ctx, "trail-1", someTiles(30), nil)
	require.ErrorIs(t, err, context.Canceled)
}
