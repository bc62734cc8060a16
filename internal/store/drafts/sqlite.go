package drafts

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

func (r *SQLiteRepository) Put(ctx context.Context, record *models.DraftRecord) error {
	query := `INSERT INTO drafts (id, type, owner_id, data, created_at, updated_at, expires_at, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET type = excluded.type,
				owner_id = excluded.owner_id,
				data = excluded.data,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				expires_at = excluded.expires_at,
				synced = excluded.synced
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, string(record.Type), record.OwnerID, string(record.Data),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		record.ExpiresAt.UTC().Format(time.RFC3339Nano),
		record.Synced)
	if err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.DraftRecord, error) {
	query := `SELECT id, type, owner_id, data, created_at, updated_at, expires_at, synced
			FROM drafts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanDraft(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select draft: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.DraftRecord, error) {
	query := `SELECT id, type, owner_id, data, created_at, updated_at, expires_at, synced
			FROM drafts ORDER BY created_at`
	return r.queryDrafts(ctx, query)
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.DraftRecord, error) {
	query := `SELECT id, type, owner_id, data, created_at, updated_at, expires_at, synced
			FROM drafts WHERE owner_id = ? ORDER BY created_at`
	return r.queryDrafts(ctx, query, ownerID)
}

func (r *SQLiteRepository) GetByType(ctx context.Context, draftType models.DraftType) ([]models.DraftRecord, error) {
	query := `SELECT id, type, owner_id, data, created_at, updated_at, expires_at, synced
			FROM drafts WHERE type = ? ORDER BY created_at`
	return r.queryDrafts(ctx, query, string(draftType))
}

func (r *SQLiteRepository) GetExpired(ctx context.Context, now time.Time) ([]models.DraftRecord, error) {
	query := `SELECT id, type, owner_id, data, created_at, updated_at, expires_at, synced
			FROM drafts WHERE expires_at < ? ORDER BY expires_at`
	return r.queryDrafts(ctx, query, now.UTC().Format(time.RFC3339Nano))
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM drafts WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM drafts WHERE expires_at < ?`
	res, err := r.db.ExecContext(ctx, query, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) queryDrafts(ctx context.Context, query string, args ...any) ([]models.DraftRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select drafts: %w", err)
	}
	defer rows.Close()

	var result []models.DraftRecord
	for rows.Next() {
		record, err := scanDraft(rows.Scan)
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

func scanDraft(scan func(dest ...any) error) (*models.DraftRecord, error) {
	var (
		record    models.DraftRecord
		draftType string
		data      string
		createdAt string
		updatedAt string
		expiresAt string
	)
	if err := scan(&record.ID, &draftType, &record.OwnerID, &data,
		&createdAt, &updatedAt, &expiresAt, &record.Synced); err != nil {
		return nil, err
	}
	record.Type = models.DraftType(draftType)
	record.Data = []byte(data)

	for _, f := range []struct {
		raw  string
		dest *time.Time
	}{
		{createdAt, &record.CreatedAt},
		{updatedAt, &record.UpdatedAt},
		{expiresAt, &record.ExpiresAt},
	} {
		ts, err := time.Parse(time.RFC3339Nano, f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse draft timestamp: %w", err)
		}
		*f.dest = ts
	}
	return &record, nil
}
