package models

import "time"

// Feedback is an immutable client comment. Revision requests are stamped
// with the quota sequence number they consumed (1-based).
type Feedback struct {
	ID             string    `db:"id" json:"id"`
	ProjectID      string    `db:"project_id" json:"project_id"`
	Comment        string    `db:"comment" json:"comment"`
	RevisionNumber int       `db:"revision_number" json:"revision_number"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FeedbackAction tells the client endpoint apart: request another revision
// or approve the current design.
type FeedbackAction string

const (
	ActionRevision FeedbackAction = "revision"
	ActionApprove  FeedbackAction = "approve"
)
