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

const fileColumns = `id, project_id, file_name, file_path, file_type, version,
       is_latest, is_downloadable, size_bytes, uploaded_at`

// FileRepository owns the project's version ledger.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository constructs the repository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// CreateVersion assigns the next version number, demotes every previous
// version and inserts the new record as latest in a single transaction, so
// a failure mid-sequence leaves the ledger untouched. The project row is
// locked first to serialize concurrent uploads, and its updated_at is bumped.
func (r *FileRepository) CreateVersion(ctx context.Context, file *models.ProjectFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if file.UploadedAt.IsZero() {
		file.UploadedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin file version: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var projectID string
	if err := tx.GetContext(ctx, &projectID, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, file.ProjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock project: %w", err)
	}

	var lastVersion int
	if err := tx.GetContext(ctx, &lastVersion, `SELECT COALESCE(MAX(version), 0) FROM files WHERE project_id = $1`, file.ProjectID); err != nil {
		return fmt.Errorf("max version: %w", err)
	}
	file.Version = lastVersion + 1
	file.IsLatest = true

	if _, err := tx.ExecContext(ctx, `UPDATE files SET is_latest = FALSE WHERE project_id = $1`, file.ProjectID); err != nil {
		return fmt.Errorf("demote previous versions: %w", err)
	}

	const insert = `INSERT INTO files
	(id, project_id, file_name, file_path, file_type, version, is_latest, is_downloadable, size_bytes, uploaded_at)
	VALUES (:id, :project_id, :file_name, :file_path, :file_type, :version, :is_latest, :is_downloadable, :size_bytes, :uploaded_at)`
	if _, err := tx.NamedExecContext(ctx, insert, file); err != nil {
		return fmt.Errorf("insert file version: %w", err)
	}

	activity := &models.Activity{
		ProjectID:    file.ProjectID,
		ActivityType: models.ActivityFileUpload,
		Description:  fmt.Sprintf("Upload: %s (v%d)", file.FileName, file.Version),
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = $2 WHERE id = $1`, file.ProjectID, now); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit file version: %w", err)
	}
	return nil
}

// GetByID retrieves one file row.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.ProjectFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, fileColumns)
	var file models.ProjectFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByProject returns all versions, newest version first.
func (r *FileRepository) ListByProject(ctx context.Context, projectID string) ([]models.ProjectFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE project_id = $1 ORDER BY version DESC, uploaded_at DESC`, fileColumns)
	var files []models.ProjectFile
	if err := r.db.SelectContext(ctx, &files, query, projectID); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// DeleteVersion removes the record and returns it so the caller can dispose
// of the physical artifact. Remaining versions keep their numbers; when the
// deleted file was the latest, the highest remaining version is re-promoted
// so the project never sits with files but no latest marker.
func (r *FileRepository) DeleteVersion(ctx context.Context, id string) (*models.ProjectFile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin file delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, fileColumns)
	var file models.ProjectFile
	if err := tx.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete file: %w", err)
	}

	if file.IsLatest {
		const repromote = `UPDATE files SET is_latest = TRUE
		WHERE project_id = $1 AND version = (SELECT MAX(version) FROM files WHERE project_id = $1)`
		if _, err := tx.ExecContext(ctx, repromote, file.ProjectID); err != nil {
			return nil, fmt.Errorf("repromote latest: %w", err)
		}
	}

	activity := &models.Activity{
		ProjectID:    file.ProjectID,
		ActivityType: models.ActivityFileDeleted,
		Description:  fmt.Sprintf("Deleted: %s (v%d)", file.FileName, file.Version),
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit file delete: %w", err)
	}
	return &file, nil
}

// ToggleDownloadable flips the client download gate and returns the updated
// row. Version and latest flags are untouched.
func (r *FileRepository) ToggleDownloadable(ctx context.Context, id string) (*models.ProjectFile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := fmt.Sprintf(`UPDATE files SET is_downloadable = NOT is_downloadable WHERE id = $1 RETURNING %s`, fileColumns)
	var file models.ProjectFile
	if err := tx.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		ProjectID:    file.ProjectID,
		ActivityType: models.ActivityFileUpdate,
		Description:  "File access status changed",
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}
	return &file, nil
}
