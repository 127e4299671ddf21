package models

import "time"

// ProjectStatus enumerates lifecycle states of a design project.
type ProjectStatus string

const (
	StatusInProgress    ProjectStatus = "in_progress"
	StatusNeedsRevision ProjectStatus = "needs_revision"
	StatusFinalizing    ProjectStatus = "finalizing"
	// StatusCompleted is terminal: no client action mutates a completed
	// project; deletion is the only further operation.
	StatusCompleted ProjectStatus = "completed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusNeedsRevision, StatusFinalizing, StatusCompleted:
		return true
	}
	return false
}

// Project is a freelance design engagement owned by the freelancer and
// readable by the client through its access token.
type Project struct {
	ID           string        `db:"id" json:"id"`
	Title        string        `db:"title" json:"title"`
	Description  string        `db:"description" json:"description"`
	ClientName   string        `db:"client_name" json:"client_name"`
	ClientEmail  string        `db:"client_email" json:"client_email"`
	DesignerName string        `db:"designer_name" json:"designer_name"`
	Status       ProjectStatus `db:"status" json:"status"`
	Progress     int           `db:"progress" json:"progress"`
	Deadline     *time.Time    `db:"deadline" json:"deadline,omitempty"`
	// AccessToken is the client capability: possession grants read and
	// limited write access to exactly this project. Immutable after create.
	AccessToken   string    `db:"access_token" json:"-"`
	MaxRevisions  int       `db:"max_revisions" json:"max_revisions"`
	UsedRevisions int       `db:"used_revisions" json:"used_revisions"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Closed reports whether the project reached its terminal state.
func (p *Project) Closed() bool {
	return p.Status == StatusCompleted
}

// RevisionsLeft returns the remaining revision quota.
func (p *Project) RevisionsLeft() int {
	left := p.MaxRevisions - p.UsedRevisions
	if left < 0 {
		return 0
	}
	return left
}

// DaysLeft computes whole days until the deadline; zero when no deadline is
// set or the deadline passed.
func (p *Project) DaysLeft(now time.Time) int {
	if p.Deadline == nil {
		return 0
	}
	days := int(p.Deadline.Sub(now).Hours() / 24)
	if days < 0 {
		return days
	}
	return days
}

// ProjectSummary is a dashboard row: the project plus listing aggregates.
type ProjectSummary struct {
	Project
	TotalFiles      int        `db:"total_files" json:"total_files"`
	TotalFeedbacks  int        `db:"total_feedbacks" json:"total_feedbacks"`
	LatestComment   *string    `db:"latest_comment" json:"latest_comment,omitempty"`
	LatestCommentAt *time.Time `db:"latest_comment_at" json:"latest_comment_at,omitempty"`
	DaysRemaining   int        `db:"-" json:"days_remaining"`
}

// ProjectFilter constrains dashboard listings.
type ProjectFilter struct {
	// Status filters by exact state; empty means "active" (everything but
	// completed), matching the dashboard default.
	Status ProjectStatus
}

// DashboardStats aggregates headline counts for the freelancer dashboard.
type DashboardStats struct {
	ActiveProjects    int `db:"active_projects" json:"active_projects"`
	CompletedProjects int `db:"completed_projects" json:"completed_projects"`
	PendingRevisions  int `db:"pending_revisions" json:"pending_revisions"`
}
