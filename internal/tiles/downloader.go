package tiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/krawl-app/krawl-offline/internal/logging"
)

const downloadBatchSize = 10

// Fetcher retrieves one tile's raw image bytes.
type Fetcher interface {
	FetchTile(ctx context.Context, tile Coordinate) ([]byte, error)
}

// HTTPFetcher fetches tiles from a URL template containing {z}, {x} and {y}
// placeholders, e.g. "https://tiles.example.com/{z}/{x}/{y}.png".
type HTTPFetcher struct {
	urlTemplate string
	http        *http.Client
}

func NewHTTPFetcher(urlTemplate string) *HTTPFetcher {
	return &HTTPFetcher{urlTemplate: urlTemplate, http: &http.Client{}}
}

func (f *HTTPFetcher) FetchTile(ctx context.Context, tile Coordinate) ([]byte, error) {
	url := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Z),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	).Replace(f.urlTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download tile %d/%d/%d: %w", tile.Z, tile.X, tile.Y, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download tile %d/%d/%d: %s", tile.Z, tile.X, tile.Y, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Downloader fills a cache bucket with tiles, a batch at a time.
type Downloader struct {
	fetcher Fetcher
	cache   *Cache
	logger  logging.Logger
}

func NewDownloader(fetcher Fetcher, cache *Cache, logger logging.Logger) *Downloader {
	return &Downloader{fetcher: fetcher, cache: cache, logger: logger}
}

// DownloadAndCache fetches every tile into bucket. Already-cached tiles are
// skipped and still counted. A tile that fails is logged and dropped; the
// map simply has a hole there. onProgress (optional) receives cumulative
// counts and may be called from concurrent fetches, serialized here.
func (d *Downloader) DownloadAndCache(ctx context.Context, bucket string, coords []Coordinate, onProgress func(downloaded, total int)) error {
	total := len(coords)
	var mu sync.Mutex
	downloaded := 0

	advance := func() {
		mu.Lock()
		downloaded++
		n := downloaded
		mu.Unlock()
		if onProgress != nil {
			onProgress(n, total)
		}
	}

	for i := 0; i < total; i += downloadBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := i + downloadBatchSize
		if end > total {
			end = total
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, tile := range coords[i:end] {
			g.Go(func() error {
				if d.cache.Has(bucket, tile) {
					advance()
					return nil
				}
				data, err := d.fetcher.FetchTile(gctx, tile)
				if err != nil {
					d.logger.Warn(gctx, "tile download failed, skipping",
						"z", tile.Z, "x", tile.X, "y", tile.Y, "error", err)
					return nil
				}
				if err := d.cache.Put(bucket, tile, data); err != nil {
					d.logger.Warn(gctx, "tile cache write failed, skipping",
						"z", tile.Z, "x", tile.X, "y", tile.Y, "error", err)
					return nil
				}
				advance()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
