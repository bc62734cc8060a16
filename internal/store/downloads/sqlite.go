package downloads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krawl-app/krawl-offline/internal/dbx"
	"github.com/krawl-app/krawl-offline/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, record *models.DownloadRecord) error {
	var completedAt sql.NullString
	if record.CompletedAt != nil {
		completedAt = sql.NullString{String: record.CompletedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	query := `INSERT INTO downloads (id, status, progress, current_step, started_at, completed_at, error, downloaded_bytes, total_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET status = excluded.status,
				progress = excluded.progress,
				current_step = excluded.current_step,
				started_at = excluded.started_at,
				completed_at = excluded.completed_at,
				error = excluded.error,
				downloaded_bytes = excluded.downloaded_bytes,
				total_bytes = excluded.total_bytes
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, string(record.Status), record.Progress, record.CurrentStep,
		record.StartedAt.UTC().Format(time.RFC3339Nano), completedAt,
		record.Error, record.DownloadedBytes, record.TotalBytes)
	if err != nil {
		return fmt.Errorf("failed to upsert download: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.DownloadRecord, error) {
	query := `SELECT id, status, progress, current_step, started_at, completed_at, error, downloaded_bytes, total_bytes
			FROM downloads WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanDownload(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select download: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.DownloadRecord, error) {
	query := `SELECT id, status, progress, current_step, started_at, completed_at, error, downloaded_bytes, total_bytes
			FROM downloads ORDER BY started_at`
	return r.queryDownloads(ctx, query)
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.DownloadStatus) ([]models.DownloadRecord, error) {
	query := `SELECT id, status, progress, current_step, started_at, completed_at, error, downloaded_bytes, total_bytes
			FROM downloads WHERE status = ? ORDER BY started_at`
	return r.queryDownloads(ctx, query, string(status))
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM downloads WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryDownloads(ctx context.Context, query string, args ...any) ([]models.DownloadRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select downloads: %w", err)
	}
	defer rows.Close()

	var result []models.DownloadRecord
	for rows.Next() {
		record, err := scanDownload(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanDownload(scan func(dest ...any) error) (*models.DownloadRecord, error) {
	var (
		record      models.DownloadRecord
		status      string
		startedAt   string
		completedAt sql.NullString
	)
	if err := scan(&record.ID, &status, &record.Progress, &record.CurrentStep,
		&startedAt, &completedAt, &record.Error, &record.DownloadedBytes, &record.TotalBytes); err != nil {
		return nil, err
	}
	record.Status = models.DownloadStatus(status)

	ts, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	record.StartedAt = ts

	if completedAt.Valid {
		done, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		record.CompletedAt = &done
	}
	return &record, nil
}
