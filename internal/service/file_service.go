package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
)

type fileStore interface {
	CreateVersion(ctx context.Context, file *models.ProjectFile) error
	GetByID(ctx context.Context, id string) (*models.ProjectFile, error)
	ListByProject(ctx context.Context, projectID string) ([]models.ProjectFile, error)
	DeleteVersion(ctx context.Context, id string) (*models.ProjectFile, error)
	ToggleDownloadable(ctx context.Context, id string) (*models.ProjectFile, error)
}

type fileProjectReader interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
}

type artifactStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// FileUpload carries one incoming design file.
type FileUpload struct {
	FileName string
	Size     int64
	Reader   io.Reader
	// IsFinal releases the version for client download immediately.
	IsFinal bool
}

// FileService validates, stores and versions uploaded design files.
type FileService struct {
	repo       fileStore
	projects   fileProjectReader
	storage    artifactStore
	metrics    *MetricsService
	logger     *zap.Logger
	allowedExt map[string]struct{}
	maxSize    int64
}

// NewFileService builds a FileService.
func NewFileService(
	repo fileStore,
	projects fileProjectReader,
	storage artifactStore,
	metrics *MetricsService,
	logger *zap.Logger,
	allowedExtensions []string,
	maxSizeBytes int64,
) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = 50 * 1024 * 1024
	}
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &FileService{
		repo:       repo,
		projects:   projects,
		storage:    storage,
		metrics:    metrics,
		logger:     logger,
		allowedExt: allowed,
		maxSize:    maxSizeBytes,
	}
}

// Upload stores the artifact and records it as the next version. Validation
// happens before anything touches disk or the ledger so a rejected upload
// leaves no trace. When the database insert fails after the artifact was
// written, the artifact is removed again.
func (s *FileService) Upload(ctx context.Context, projectID string, in FileUpload) (*models.ProjectFile, error) {
	if projectID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "project id is required")
	}
	if in.FileName == "" || in.Reader == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.FileName), "."))
	if _, ok := s.allowedExt[ext]; !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, fmt.Sprintf("file type .%s is not accepted", ext))
	}
	if in.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, "file is empty")
	}
	if in.Size > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, fmt.Sprintf("file exceeds the %d MB limit", s.maxSize/(1024*1024)))
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}

	relPath := filepath.Join(project.ID, storedFileName(in.FileName))
	if _, err := s.storage.SaveStream(relPath, in.Reader); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store design file")
	}

	file := &models.ProjectFile{
		ProjectID:      project.ID,
		FileName:       filepath.Base(in.FileName),
		FilePath:       relPath,
		FileType:       ext,
		IsDownloadable: in.IsFinal,
		SizeBytes:      in.Size,
	}
	if err := s.repo.CreateVersion(ctx, file); err != nil {
		if delErr := s.storage.Delete(relPath); delErr != nil {
			s.logger.Warn("failed to remove orphaned artifact", zap.String("path", relPath), zap.Error(delErr))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record file version")
	}

	s.metrics.RecordUpload()
	s.logger.Info("file version stored",
		zap.String("project_id", project.ID),
		zap.String("file_id", file.ID),
		zap.Int("version", file.Version))
	return file, nil
}

// Delete removes one version record and its artifact. Remaining versions keep
// their numbers. The artifact removal is best-effort: a failing disk does not
// undo the ledger change, it only leaves a stray file behind.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "file id is required")
	}

	file, err := s.repo.DeleteVersion(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file version")
	}

	if err := s.storage.Delete(file.FilePath); err != nil {
		s.logger.Warn("failed to remove artifact", zap.String("path", file.FilePath), zap.Error(err))
	}
	return nil
}

// ToggleLock flips the client download gate on one version.
func (s *FileService) ToggleLock(ctx context.Context, fileID string) (*models.ProjectFile, error) {
	if fileID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file id is required")
	}
	file, err := s.repo.ToggleDownloadable(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle file access")
	}
	return file, nil
}

// storedFileName prefixes the sanitized upload name with a timestamp so two
// uploads of the same file never collide on disk.
func storedFileName(original string) string {
	base := filepath.Base(original)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102_150405"), base)
}
