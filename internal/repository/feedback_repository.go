package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nandaprs/designtrack/internal/models"
)

// FeedbackRepository persists client feedback and owns the revision quota
// consumption.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ConsumeRevision performs the quota check and increment as one conditional
// update, so two concurrent requests can never both pass the ceiling. On
// success the feedback row is stamped with the consumed sequence number and
// the project moves to needs_revision. Returns sql.ErrNoRows when the quota
// was exhausted (or the project closed) at commit time.
func (r *FeedbackRepository) ConsumeRevision(ctx context.Context, projectID, comment string) (*models.Feedback, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin revision: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const consume = `UPDATE projects
	SET used_revisions = used_revisions + 1, status = $2, updated_at = $3
	WHERE id = $1 AND used_revisions < max_revisions AND status <> $4
	RETURNING used_revisions`
	var revision int
	if err := tx.GetContext(ctx, &revision, consume, projectID, models.StatusNeedsRevision, now, models.StatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("consume revision: %w", err)
	}

	feedback := &models.Feedback{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Comment:        comment,
		RevisionNumber: revision,
		CreatedAt:      now,
	}
	const insert = `INSERT INTO feedbacks (id, project_id, comment, revision_number, created_at)
	VALUES (:id, :project_id, :comment, :revision_number, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, feedback); err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	activity := &models.Activity{
		ProjectID:    projectID,
		ActivityType: models.ActivityFeedback,
		Description:  fmt.Sprintf("Client requested revision #%d", revision),
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit revision: %w", err)
	}
	return feedback, nil
}

// ListByProject returns feedback entries, newest first.
func (r *FeedbackRepository) ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	const query = `SELECT id, project_id, comment, revision_number, created_at
	FROM feedbacks WHERE project_id = $1 ORDER BY created_at DESC`
	var entries []models.Feedback
	if err := r.db.SelectContext(ctx, &entries, query, projectID); err != nil {
		return nil, fmt.Errorf("list feedbacks: %w", err)
	}
	return entries, nil
}
