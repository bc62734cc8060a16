package trails

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krawl-app/krawl-offline/internal/models"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE trails (
  id            TEXT PRIMARY KEY,
  data          TEXT NOT NULL,
  version       TEXT NOT NULL,
  downloaded_at TIMESTAMP NOT NULL,
  size_bytes    INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func sampleRecord(id, version string) *models.TrailRecord {
	return &models.TrailRecord{
		ID: id,
		Data: models.TrailDetail{
			ID:   id,
			Name: "Heritage Walk",
			Gems: []models.TrailGemRef{
				{ID: "g1", GemID: "g1", Order: 0},
				{ID: "g2", GemID: "g2", Order: 1},
			},
			UpdatedAt: version,
		},
		Version:      version,
		DownloadedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		SizeBytes:    1234,
	}
}

func TestPutAndGet_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := sampleRecord("t-1", "v1")
	require.NoError(t, r.Put(ctx, rec))

	got, err := r.Get(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, "v1", got.Version)
	assert.Equal(t, int64(1234), got.SizeBytes)
	assert.Equal(t, rec.Data, got.Data)
	assert.True(t, rec.DownloadedAt.Equal(got.DownloadedAt))
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPut_UpsertReplacesSnapshot(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sampleRecord("t-1", "v1")))
	require.NoError(t, r.Put(ctx, sampleRecord("t-1", "v2")))

	got, err := r.Get(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v2", got.Version)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAll_OrderedByDownloadTime(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	older := sampleRecord("t-old", "v1")
	older.DownloadedAt = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleRecord("t-new", "v1")
	newer.DownloadedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Put(ctx, newer))
	require.NoError(t, r.Put(ctx, older))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t-old", all[0].ID)
	assert.Equal(t, "t-new", all[1].ID)
}

func TestDelete_RemovesRecord_AndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sampleRecord("t-1", "v1")))
	require.NoError(t, r.Delete(ctx, "t-1"))

	got, err := r.Get(ctx, "t-1")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, r.Delete(ctx, "t-1"))
}
