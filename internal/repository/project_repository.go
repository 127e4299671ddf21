package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nandaprs/designtrack/internal/models"
)

const projectColumns = `id, title, description, client_name, client_email, designer_name,
       status, progress, deadline, access_token, max_revisions, used_revisions, created_at, updated_at`

// ProjectRepository handles project persistence.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs the repository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project together with its opening activity entry.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create project: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO projects
	(id, title, description, client_name, client_email, designer_name, status, progress, deadline, access_token, max_revisions, used_revisions, created_at, updated_at)
	VALUES (:id, :title, :description, :client_name, :client_email, :designer_name, :status, :progress, :deadline, :access_token, :max_revisions, :used_revisions, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	activity := &models.Activity{
		ProjectID:    project.ID,
		ActivityType: models.ActivityProjectStart,
		Description:  fmt.Sprintf("Project created for %s", project.ClientName),
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create project: %w", err)
	}
	return nil
}

// GetByID retrieves one project row.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByToken resolves the project granted by a client access token.
func (r *ProjectRepository) GetByToken(ctx context.Context, token string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE access_token = $1`, projectColumns)
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, token); err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns dashboard rows with file/feedback aggregates, most recently
// updated first.
func (r *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, error) {
	query := `SELECT p.id, p.title, p.description, p.client_name, p.client_email, p.designer_name,
       p.status, p.progress, p.deadline, p.access_token, p.max_revisions, p.used_revisions, p.created_at, p.updated_at,
       (SELECT COUNT(*) FROM files f WHERE f.project_id = p.id) AS total_files,
       (SELECT COUNT(*) FROM feedbacks fb WHERE fb.project_id = p.id) AS total_feedbacks,
       (SELECT comment FROM feedbacks fb WHERE fb.project_id = p.id ORDER BY fb.created_at DESC LIMIT 1) AS latest_comment,
       (SELECT created_at FROM feedbacks fb WHERE fb.project_id = p.id ORDER BY fb.created_at DESC LIMIT 1) AS latest_comment_at
	FROM projects p`

	args := make([]interface{}, 0, 1)
	if filter.Status != "" {
		query += ` WHERE p.status = $1`
		args = append(args, filter.Status)
	} else {
		query += ` WHERE p.status <> $1`
		args = append(args, models.StatusCompleted)
	}
	query += ` ORDER BY p.updated_at DESC`

	var rows []models.ProjectSummary
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return rows, nil
}

// Stats aggregates headline dashboard counts.
func (r *ProjectRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
       COUNT(*) FILTER (WHERE status <> 'completed') AS active_projects,
       COUNT(*) FILTER (WHERE status = 'completed') AS completed_projects,
       COUNT(*) FILTER (WHERE status = 'needs_revision') AS pending_revisions
	FROM projects`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

// Update applies the freelancer's metadata edit, including the status
// override, and records the project_update activity in the same transaction.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update project: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE projects SET
	title = :title, description = :description, designer_name = :designer_name,
	status = :status, progress = :progress, deadline = :deadline, updated_at = :updated_at
	WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, project)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check project update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	activity := &models.Activity{
		ProjectID:    project.ID,
		ActivityType: models.ActivityProjectUpdate,
		Description:  "Project info updated",
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update project: %w", err)
	}
	return nil
}

// SetStatus moves the project to the given state and appends the matching
// activity entry atomically. Used for the approve and finish transitions.
func (r *ProjectRepository) SetStatus(ctx context.Context, projectID string, status models.ProjectStatus, activityType, description string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status change: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, projectID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set project status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	activity := &models.Activity{
		ProjectID:    projectID,
		ActivityType: activityType,
		Description:  description,
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status change: %w", err)
	}
	return nil
}

// Delete removes the project; files, feedbacks and activities cascade via
// foreign keys. Physical artifacts are the caller's concern.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check project delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
