package gems

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

func (r *SQLiteRepository) Put(ctx context.Context, record *models.GemRecord) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to encode gem data: %w", err)
	}

	var trailID sql.NullString
	if record.TrailID != "" {
		trailID = sql.NullString{String: record.TrailID, Valid: true}
	}

	query := `INSERT INTO gems (id, trail_id, data, downloaded_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET trail_id = excluded.trail_id,
				data = excluded.data,
				downloaded_at = excluded.downloaded_at
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ID, trailID, string(data), record.DownloadedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert gem: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PutAll(ctx context.Context, records []models.GemRecord) error {
	for i := range records {
		if err := r.Put(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.GemRecord, error) {
	query := `SELECT id, trail_id, data, downloaded_at FROM gems WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanGem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select gem: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.GemRecord, error) {
	query := `SELECT id, trail_id, data, downloaded_at FROM gems`
	return r.queryGems(ctx, query)
}

func (r *SQLiteRepository) GetByTrailID(ctx context.Context, trailID string) ([]models.GemRecord, error) {
	query := `SELECT id, trail_id, data, downloaded_at FROM gems WHERE trail_id = ?`
	return r.queryGems(ctx, query, trailID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM gems WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete gem: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByTrailID(ctx context.Context, trailID string) error {
	query := `DELETE FROM gems WHERE trail_id = ?`
	if _, err := r.db.ExecContext(ctx, query, trailID); err != nil {
		return fmt.Errorf("failed to delete gems for trail: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryGems(ctx context.Context, query string, args ...any) ([]models.GemRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select gems: %w", err)
	}
	defer rows.Close()

	var result []models.GemRecord
	for rows.Next() {
		record, err := scanGem(rows.Scan)
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

func scanGem(scan func(dest ...any) error) (*models.GemRecord, error) {
	var (
		record       models.GemRecord
		trailID      sql.NullString
		data         string
		downloadedAt string
	)
	if err := scan(&record.ID, &trailID, &data, &downloadedAt); err != nil {
		return nil, err
	}
	record.TrailID = trailID.String
	if err := json.Unmarshal([]byte(data), &record.Data); err != nil {
		return nil, fmt.Errorf("failed to decode gem data: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, downloadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse downloaded_at: %w", err)
	}
	record.DownloadedAt = ts
	return &record, nil
}
