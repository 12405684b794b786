package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated   ActivityType = "project_created"
	TypeProjectRenamed   ActivityType = "project_renamed"
	TypeProjectDeleted   ActivityType = "project_deleted"
	TypeProjectActivated ActivityType = "project_activated"
	TypeSnapshotSaved    ActivityType = "snapshot_saved"
	TypeSnapshotUpdated  ActivityType = "snapshot_updated"
	TypeSnapshotDeleted  ActivityType = "snapshot_deleted"
	TypePersistFailed    ActivityType = "persist_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id"`
	SnapshotID   *string      `json:"snapshot_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
