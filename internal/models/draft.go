package models

import (
	"encoding/json"
	"time"
)

// DraftType classifies a draft's target entity.
type DraftType string

const (
	DraftGem   DraftType = "gem"
	DraftTrail DraftType = "trail"
)

// DraftRecord is a time-boxed local draft of in-progress user content.
// ExpiresAt is fixed at creation (createdAt + 30 days); updates refresh
// UpdatedAt but never extend ExpiresAt.
type DraftRecord struct {
	ID        string
	Type      DraftType
	OwnerID   string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
	Synced    bool
}
