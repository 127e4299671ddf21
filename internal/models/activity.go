package models

import "time"

// Activity type tags recorded on the project timeline.
const (
	ActivityProjectStart  = "project_start"
	ActivityProjectUpdate = "project_update"
	ActivityFileUpload    = "file_upload"
	ActivityFileDeleted   = "file_deleted"
	ActivityFileUpdate    = "file_update"
	ActivityFeedback      = "feedback"
	ActivityApproved      = "approved"
	ActivityCompleted     = "completed"
)

// Activity is an append-only audit entry on a project. Entries are never
// mutated or removed except through the project cascade.
type Activity struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"project_id"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
