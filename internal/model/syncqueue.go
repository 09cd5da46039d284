package model

import "time"

// SyncAction is the kind of change recorded in the sync queue.
type SyncAction string

const (
	SyncCreate SyncAction = "create"
	SyncUpdate SyncAction = "update"
	SyncDelete SyncAction = "delete"
)

// SyncStatus is the delivery state of a queued change.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// SyncQueueItem mirrors a row of the sync_queue table. The table exists in
// the schema but nothing writes or reads it yet.
type SyncQueueItem struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Action     SyncAction `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	Payload    string     `json:"payload" db:"payload"`
	Status     SyncStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	SyncedAt   *time.Time `json:"synced_at,omitempty" db:"synced_at"`
}
