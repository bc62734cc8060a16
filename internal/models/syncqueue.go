package models

import (
	"encoding/json"
	"time"
)

// SyncOpType identifies which remote operation a queue item maps to.
type SyncOpType string

const (
	SyncCreateGem   SyncOpType = "create-gem"
	SyncCreateTrail SyncOpType = "create-trail"
	SyncUpdateGem   SyncOpType = "update-gem"
	SyncUpdateTrail SyncOpType = "update-trail"
	SyncDeleteGem   SyncOpType = "delete-gem"
	SyncDeleteTrail SyncOpType = "delete-trail"
)

// SyncStatus is the lifecycle state of a queue item.
type SyncStatus string

const (
	SyncPending    SyncStatus = "pending"
	SyncProcessing SyncStatus = "processing"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

// SyncQueueRecord is one durable pending mutation. RetryCount only increases;
// once Status is failed the item is terminal and requires user intervention.
type SyncQueueRecord struct {
	ID string

	Type SyncOpType

	// EntityID is required for update/delete operations.
	EntityID string

	Data json.RawMessage

	CreatedAt   time.Time
	RetryCount  int
	LastRetryAt *time.Time
	Status      SyncStatus
	Error       string
}
