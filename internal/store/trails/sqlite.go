package trails

import (
	"context"
	"database/sql"
	"encoding/json"
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

// Put upserts a trail record by id. On conflict all snapshot columns are replaced.
func (r *SQLiteRepository) Put(ctx context.Context, record *models.TrailRecord) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to encode trail data: %w", err)
	}

	query := `INSERT INTO trails (id, data, version, downloaded_at, size_bytes)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET data = excluded.data,
				version = excluded.version,
				downloaded_at = excluded.downloaded_at,
				size_bytes = excluded.size_bytes
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ID, string(data), record.Version,
		record.DownloadedAt.UTC().Format(time.RFC3339Nano), record.SizeBytes)
	if err != nil {
		return fmt.Errorf("failed to upsert trail: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.TrailRecord, error) {
	query := `SELECT id, data, version, downloaded_at, size_bytes FROM trails WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanTrail(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select trail: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.TrailRecord, error) {
	query := `SELECT id, data, version, downloaded_at, size_bytes FROM trails ORDER BY downloaded_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select trails: %w", err)
	}
	defer rows.Close()

	var result []models.TrailRecord
	for rows.Next() {
		record, err := scanTrail(rows.Scan)
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

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM trails WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete trail: %w", err)
	}
	return nil
}

func scanTrail(scan func(dest ...any) error) (*models.TrailRecord, error) {
	var (
		record       models.TrailRecord
		data         string
		downloadedAt string
	)
	if err := scan(&record.ID, &data, &record.Version, &downloadedAt, &record.SizeBytes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &record.Data); err != nil {
		return nil, fmt.Errorf("failed to decode trail data: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, downloadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse downloaded_at: %w", err)
	}
	record.DownloadedAt = ts
	return &record, nil
}
