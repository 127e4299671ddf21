package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
)

const clientActivityLimit = 10

type clientProjectResolver interface {
	GetByToken(ctx context.Context, token string) (*models.Project, error)
	SetStatus(ctx context.Context, projectID string, status models.ProjectStatus, activityType, description string) error
}

type clientFeedbackStore interface {
	ConsumeRevision(ctx context.Context, projectID, comment string) (*models.Feedback, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error)
}

type artifactOpener interface {
	Open(filename string) (*os.File, error)
}

type downloadSigner interface {
	Generate(fileID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (fileID, relPath string, expiresAt time.Time, err error)
}

// FileDownload is an opened artifact ready to stream to the client.
type FileDownload struct {
	File    *models.ProjectFile
	Content io.ReadCloser
}

// ClientService is the tokenized surface: everything a client can see or do,
// scoped to the single project their access token unlocks. An unknown token
// answers exactly like a missing project.
type ClientService struct {
	projects   clientProjectResolver
	files      fileStore
	feedbacks  clientFeedbackStore
	activities projectActivityLister
	storage    artifactOpener
	signer     downloadSigner
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	basePath   string
}

// NewClientService builds a ClientService. basePath prefixes generated
// download URLs, e.g. "/api/v1".
func NewClientService(
	projects clientProjectResolver,
	files fileStore,
	feedbacks clientFeedbackStore,
	activities projectActivityLister,
	storage artifactOpener,
	signer downloadSigner,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	basePath string,
) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		projects:   projects,
		files:      files,
		feedbacks:  feedbacks,
		activities: activities,
		storage:    storage,
		signer:     signer,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		basePath:   strings.TrimRight(basePath, "/"),
	}
}

// View assembles the client project page.
func (s *ClientService) View(ctx context.Context, token string) (*dto.ClientProjectResponse, error) {
	project, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	files, err := s.files.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project files")
	}
	feedbacks, err := s.feedbacks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project feedback")
	}
	activities, err := s.activities.ListByProject(ctx, project.ID, clientActivityLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project activities")
	}

	return &dto.ClientProjectResponse{
		Project:       project,
		Files:         files,
		Feedbacks:     feedbacks,
		Activities:    activities,
		RevisionsLeft: project.RevisionsLeft(),
	}, nil
}

// SubmitFeedback handles the two client actions. A revision request consumes
// one quota slot and moves the project to needs_revision; an approval moves
// it to finalizing. Both are rejected once the project is completed.
func (s *ClientService) SubmitFeedback(ctx context.Context, token string, req dto.SubmitFeedbackRequest) (*models.Project, *models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	project, err := s.resolve(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if project.Closed() {
		return nil, nil, appErrors.ErrProjectClosed
	}

	switch req.Action {
	case models.ActionRevision:
		if strings.TrimSpace(req.Comment) == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "comment is required for a revision request")
		}
		if project.RevisionsLeft() == 0 {
			s.metrics.RecordRevisionRequest(false)
			return nil, nil, appErrors.ErrQuotaExceeded
		}
		feedback, err := s.feedbacks.ConsumeRevision(ctx, project.ID, req.Comment)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.metrics.RecordRevisionRequest(false)
				return nil, nil, appErrors.ErrQuotaExceeded
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record revision request")
		}
		project.UsedRevisions = feedback.RevisionNumber
		project.Status = models.StatusNeedsRevision
		s.metrics.RecordRevisionRequest(true)
		s.invalidateDashboard(ctx)
		s.logger.Info("revision requested",
			zap.String("project_id", project.ID),
			zap.Int("revision", feedback.RevisionNumber))
		return project, feedback, nil

	case models.ActionApprove:
		if err := s.projects.SetStatus(ctx, project.ID, models.StatusFinalizing, models.ActivityApproved, "Design approved by client"); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record approval")
		}
		project.Status = models.StatusFinalizing
		s.invalidateDashboard(ctx)
		s.logger.Info("design approved", zap.String("project_id", project.ID))
		return project, nil, nil

	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown feedback action")
	}
}

// Download opens the artifact for streaming. The download gate applies
// regardless of how the client got here; a signature, when supplied, must
// match the requested file and still be fresh.
func (s *ClientService) Download(ctx context.Context, token, fileID, signature string) (*FileDownload, error) {
	file, err := s.authorizeFile(ctx, token, fileID)
	if err != nil {
		return nil, err
	}

	if signature != "" {
		signedID, _, _, err := s.signer.Parse(signature, false)
		if err != nil || signedID != file.ID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link invalid or expired")
		}
	}

	content, err := s.storage.Open(file.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "artifact unavailable")
	}
	return &FileDownload{File: file, Content: content}, nil
}

// DownloadURL hands out a signed, expiring link for one file version.
func (s *ClientService) DownloadURL(ctx context.Context, token, fileID string) (*dto.FileDownloadResponse, error) {
	file, err := s.authorizeFile(ctx, token, fileID)
	if err != nil {
		return nil, err
	}

	signed, expiresAt, err := s.signer.Generate(file.ID, file.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	url := fmt.Sprintf("%s/client/%s/files/%s/download?sig=%s", s.basePath, token, file.ID, signed)
	return &dto.FileDownloadResponse{
		ProjectFile: *file,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
	}, nil
}

// authorizeFile resolves the token and checks the file belongs to the granted
// project and is released for download.
func (s *ClientService) authorizeFile(ctx context.Context, token, fileID string) (*models.ProjectFile, error) {
	project, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.ProjectID != project.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	if !file.IsDownloadable {
		return nil, appErrors.ErrFileLocked
	}
	return file, nil
}

func (s *ClientService) resolve(ctx context.Context, token string) (*models.Project, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	project, err := s.projects.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve access token")
	}
	return project, nil
}

func (s *ClientService) invalidateDashboard(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
