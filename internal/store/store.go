// Package store opens the local SQLite database, applies migrations, and
// wires up the per-collection repositories. It is the only component that
// owns the on-disk representation of the five offline collections.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/krawl-app/krawl-offline/internal/common"
	"github.com/krawl-app/krawl-offline/internal/store/downloads"
	"github.com/krawl-app/krawl-offline/internal/store/drafts"
	"github.com/krawl-app/krawl-offline/internal/store/gems"
	"github.com/krawl-app/krawl-offline/internal/store/migrations"
	"github.com/krawl-app/krawl-offline/internal/store/syncqueue"
	"github.com/krawl-app/krawl-offline/internal/store/trails"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories bundles the collection accessors over one database handle.
type Repositories struct {
	Trails    trails.Repository
	Gems      gems.Repository
	Downloads downloads.Repository
	Drafts    drafts.Repository
	SyncQueue syncqueue.Repository
}

// RunMigrations applies all embedded migrations. Each migration step uses
// IF NOT EXISTS guards, so re-running after an interruption is safe.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn, runs migrations, and returns
// the repositories plus the raw handle for transaction scoping. Any failure
// is reported as common.ErrStoreUnavailable so callers can degrade to
// network-only behavior.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	// Single connection: keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY from concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	repos := &Repositories{
		Trails:    trails.NewSQLiteRepository(db),
		Gems:      gems.NewSQLiteRepository(db),
		Downloads: downloads.NewSQLiteRepository(db),
		Drafts:    drafts.NewSQLiteRepository(db),
		SyncQueue: syncqueue.NewSQLiteRepository(db),
	}
	return repos, db, nil
}

// ClearAll empties every collection. Debug and test tooling only; the tile
// cache lives outside the database and is cleared separately.
func ClearAll(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"trails", "gems", "downloads", "drafts", "sync_queue"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
