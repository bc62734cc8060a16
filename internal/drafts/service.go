// Package drafts manages time-boxed local drafts of in-progress gems and
// trails. Drafts live for 30 days from creation; updating one refreshes its
// content but never extends its life.
package drafts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/krawl-app/krawl-offline/internal/common"
	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/store/drafts"
)

// Service owns the draft lifecycle. Expiry sweeps are caller-invoked; the
// service does not self-schedule.
type Service struct {
	repo   drafts.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewService(repo drafts.Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// SaveDraft upserts a draft and returns its id. With an empty draftID a new
// record is created with a fresh 30-day expiry; with an existing one, only
// data and updatedAt change.
func (s *Service) SaveDraft(ctx context.Context, draftType models.DraftType, ownerID string, data json.RawMessage, draftID string) (string, error) {
	now := s.now().UTC()

	if draftID != "" {
		existing, err := s.repo.Get(ctx, draftID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			existing.Data = data
			existing.UpdatedAt = now
			return draftID, s.repo.Put(ctx, existing)
		}
	}

	id := draftID
	if id == "" {
		id = uuid.NewString()
	}
	record := &models.DraftRecord{
		ID:        id,
		Type:      draftType,
		OwnerID:   ownerID,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.AddDate(0, 0, common.DraftTTLDays),
	}
	return id, s.repo.Put(ctx, record)
}

// Draft returns one draft, or (nil, nil) when absent.
func (s *Service) Draft(ctx context.Context, draftID string) (*models.DraftRecord, error) {
	return s.repo.Get(ctx, draftID)
}

// DraftsForOwner returns every draft belonging to one owner.
func (s *Service) DraftsForOwner(ctx context.Context, ownerID string) ([]models.DraftRecord, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

// DraftsByType returns one owner's drafts of the given type.
func (s *Service) DraftsByType(ctx context.Context, draftType models.DraftType, ownerID string) ([]models.DraftRecord, error) {
	all, err := s.repo.GetByType(ctx, draftType)
	if err != nil {
		return nil, err
	}
	mine := make([]models.DraftRecord, 0, len(all))
	for _, d := range all {
		if d.OwnerID == ownerID {
			mine = append(mine, d)
		}
	}
	return mine, nil
}

// DeleteDraft discards a draft. Deleting an absent id is a no-op.
func (s *Service) DeleteDraft(ctx context.Context, draftID string) error {
	return s.repo.Delete(ctx, draftID)
}

// MarkSynced flags a draft as published to the server. The record stays for
// the owner to clean up; marking an absent draft is a no-op.
func (s *Service) MarkSynced(ctx context.Context, draftID string) error {
	draft, err := s.repo.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft == nil {
		return nil
	}
	draft.Synced = true
	return s.repo.Put(ctx, draft)
}

// CleanupExpired removes every draft past its expiry and returns the count.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "expired drafts removed", "count", n)
	}
	return n, nil
}
