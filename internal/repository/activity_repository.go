package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nandaprs/designtrack/internal/models"
)

// insertActivity appends a timeline entry using the provided executor, so
// repositories can fold the append into their own transactions.
func insertActivity(ctx context.Context, ext sqlx.ExtContext, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activities (id, project_id, activity_type, description, created_at)
	VALUES ($1, $2, $3, $4, $5)`
	if _, err := ext.ExecContext(ctx, query, activity.ID, activity.ProjectID, activity.ActivityType, activity.Description, activity.CreatedAt); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ActivityRepository handles the append-only project timeline.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append records one activity entry.
func (r *ActivityRepository) Append(ctx context.Context, activity *models.Activity) error {
	return insertActivity(ctx, r.db, activity)
}

// ListByProject returns the most recent entries, newest first. A limit of
// zero or less returns everything.
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]models.Activity, error) {
	query := `SELECT id, project_id, activity_type, description, created_at
	FROM activities WHERE project_id = $1 ORDER BY created_at DESC`
	args := []interface{}{projectID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	var entries []models.Activity
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return entries, nil
}
