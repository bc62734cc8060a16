package syncqueue

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

func (r *SQLiteRepository) Put(ctx context.Context, record *models.SyncQueueRecord) error {
	var lastRetryAt sql.NullString
	if record.LastRetryAt != nil {
		lastRetryAt = sql.NullString{String: record.LastRetryAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	query := `INSERT INTO sync_queue (id, type, entity_id, data, created_at, retry_count, last_retry_at, status, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET type = excluded.type,
				entity_id = excluded.entity_id,
				data = excluded.data,
				created_at = excluded.created_at,
				retry_count = excluded.retry_count,
				last_retry_at = excluded.last_retry_at,
				status = excluded.status,
				error = excluded.error
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, string(record.Type), record.EntityID, string(record.Data),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.RetryCount, lastRetryAt, string(record.Status), record.Error)
	if err != nil {
		return fmt.Errorf("failed to upsert sync queue item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.SyncQueueRecord, error) {
	query := `SELECT id, type, entity_id, data, created_at, retry_count, last_retry_at, status, error
			FROM sync_queue WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select sync queue item: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.SyncQueueRecord, error) {
	query := `SELECT id, type, entity_id, data, created_at, retry_count, last_retry_at, status, error
			FROM sync_queue ORDER BY created_at`
	return r.queryItems(ctx, query)
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.SyncQueueRecord, error) {
	query := `SELECT id, type, entity_id, data, created_at, retry_count, last_retry_at, status, error
			FROM sync_queue WHERE status = ? ORDER BY created_at`
	return r.queryItems(ctx, query, string(status))
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sync_queue WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete sync queue item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	query := `DELETE FROM sync_queue WHERE status = ?`
	res, err := r.db.ExecContext(ctx, query, string(models.SyncCompleted))
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed sync queue items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.SyncQueueRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync queue items: %w", err)
	}
	defer rows.Close()

	var result []models.SyncQueueRecord
	for rows.Next() {
		record, err := scanItem(rows.Scan)
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

func scanItem(scan func(dest ...any) error) (*models.SyncQueueRecord, error) {
	var (
		record      models.SyncQueueRecord
		opType      string
		data        string
		createdAt   string
		lastRetryAt sql.NullString
		status      string
	)
	if err := scan(&record.ID, &opType, &record.EntityID, &data,
		&createdAt, &record.RetryCount, &lastRetryAt, &status, &record.Error); err != nil {
		return nil, err
	}
	record.Type = models.SyncOpType(opType)
	record.Status = models.SyncStatus(status)
	record.Data = []byte(data)

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	record.CreatedAt = ts

	if lastRetryAt.Valid {
		retry, err := time.Parse(time.RFC3339Nano, lastRetryAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_retry_at: %w", err)
		}
		record.LastRetryAt = &retry
	}
	return &record, nil
}
