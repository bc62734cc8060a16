// Package cli implements the interactive command-line client for the offline
// engine: downloading trails, inspecting snapshots, and driving the sync
// queue by hand.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/krawl-app/krawl-offline/internal/api"
	"github.com/krawl-app/krawl-offline/internal/config"
	"github.com/krawl-app/krawl-offline/internal/download"
	"github.com/krawl-app/krawl-offline/internal/drafts"
	"github.com/krawl-app/krawl-offline/internal/filex"
	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/netx"
	"github.com/krawl-app/krawl-offline/internal/quota"
	"github.com/krawl-app/krawl-offline/internal/reader"
	"github.com/krawl-app/krawl-offline/internal/store"
	"github.com/krawl-app/krawl-offline/internal/syncer"
	"github.com/krawl-app/krawl-offline/internal/tiles"
	"github.com/krawl-app/krawl-offline/internal/updates"
)

// App wires the engine together behind the REPL.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  *store.Repositories

	online       netx.Checker
	orchestrator *download.Orchestrator
	tileCache    *tiles.Cache
	guard        *quota.Guard
	queue        *syncer.Queue
	scheduler    *syncer.Scheduler
	updates      *updates.Service
	reader       *reader.Reader
	drafts       *drafts.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := filex.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}

	repos, db, err := store.InitDatabase(ctx, filepath.Join(cfg.DataDir, "krawl.db"))
	if err != nil {
		return nil, err
	}

	tileCache, err := tiles.NewCache(filepath.Join(cfg.DataDir, "tiles"), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	client := api.NewHTTPClient(cfg.APIBaseURL)
	online := netx.NewPingChecker(client, logger)
	guard := quota.NewGuard(quota.NewDiskEstimator(cfg.DataDir))
	tileDownloader := tiles.NewDownloader(tiles.NewHTTPFetcher(cfg.TileURLTemplate), tileCache, logger)

	orchestrator := download.NewOrchestrator(
		client, repos.Trails, repos.Gems, repos.Downloads,
		guard, tileDownloader, tileCache, logger,
	)
	processor := syncer.NewProcessor(repos.SyncQueue, client, online, logger, nil)
	scheduler := syncer.NewScheduler(processor, repos.SyncQueue, online, logger)
	scheduler.SetInterval(cfg.SyncInterval)

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		repos:        repos,
		online:       online,
		orchestrator: orchestrator,
		tileCache:    tileCache,
		guard:        guard,
		queue:        syncer.NewQueue(repos.SyncQueue),
		scheduler:    scheduler,
		updates:      updates.NewService(client, repos.Trails, orchestrator, logger),
		reader:       reader.NewReader(client, repos.Trails, repos.Gems, online, logger),
		drafts:       drafts.NewService(repos.Drafts, logger),
	}, nil
}

// Run starts the background sync loop and the REPL, returning when the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() { _ = a.db.Close() }()

	go a.scheduler.Run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, scanner)
}
