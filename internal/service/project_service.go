package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/jobs"
)

const (
	dashboardStatsCacheKey   = "dashboard:stats"
	dashboardCachePattern    = "dashboard:*"
	jobTypeArtifactCleanup   = "artifact_cleanup"
	deadlineLayout           = "2006-01-02"
	defaultActivityPageLimit = 20
)

type projectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
	Update(ctx context.Context, project *models.Project) error
	SetStatus(ctx context.Context, projectID string, status models.ProjectStatus, activityType, description string) error
	Delete(ctx context.Context, id string) error
}

type projectFileLister interface {
	ListByProject(ctx context.Context, projectID string) ([]models.ProjectFile, error)
}

type projectFeedbackLister interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error)
}

type projectActivityLister interface {
	ListByProject(ctx context.Context, projectID string, limit int) ([]models.Activity, error)
}

type artifactQueue interface {
	Enqueue(job jobs.Job) error
}

// ProjectService orchestrates the freelancer-facing project lifecycle.
type ProjectService struct {
	repo             projectStore
	files            projectFileLister
	feedbacks        projectFeedbackLister
	activities       projectActivityLister
	cache            *CacheService
	cleanup          artifactQueue
	validator        *validator.Validate
	logger           *zap.Logger
	defaultRevisions int
	cacheTTL         time.Duration
}

// NewProjectService builds a ProjectService with sane defaults.
func NewProjectService(
	repo projectStore,
	files projectFileLister,
	feedbacks projectFeedbackLister,
	activities projectActivityLister,
	cache *CacheService,
	cleanup artifactQueue,
	validate *validator.Validate,
	logger *zap.Logger,
	defaultRevisions int,
	cacheTTL time.Duration,
) *ProjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultRevisions <= 0 {
		defaultRevisions = 3
	}
	return &ProjectService{
		repo:             repo,
		files:            files,
		feedbacks:        feedbacks,
		activities:       activities,
		cache:            cache,
		cleanup:          cleanup,
		validator:        validate,
		logger:           logger,
		defaultRevisions: defaultRevisions,
		cacheTTL:         cacheTTL,
	}
}

// Create opens a new project and mints its client access token. The token is
// the only credential the client will ever hold for this project.
func (s *ProjectService) Create(ctx context.Context, req dto.CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	token, err := newAccessToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mint access token")
	}

	project := &models.Project{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		ClientName:   req.ClientName,
		ClientEmail:  req.ClientEmail,
		DesignerName: req.DesignerName,
		Status:       models.StatusInProgress,
		Progress:     0,
		Deadline:     deadline,
		AccessToken:  token,
		MaxRevisions: s.defaultRevisions,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("client", project.ClientName))
	return project, nil
}

// Dashboard lists projects with aggregates plus headline stats. Stats are
// served from cache when enabled.
func (s *ProjectService) Dashboard(ctx context.Context, filter models.ProjectFilter) (*dto.DashboardResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].DaysRemaining = rows[i].DaysLeft(now)
	}

	stats, err := s.dashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{Projects: rows, Stats: stats}, nil
}

// Get returns the full freelancer view: project, files, feedback and the
// activity timeline.
func (s *ProjectService) Get(ctx context.Context, id string) (*dto.ProjectDetailResponse, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := s.files.ListByProject(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project files")
	}
	feedbacks, err := s.feedbacks.ListByProject(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project feedback")
	}
	activities, err := s.activities.ListByProject(ctx, id, defaultActivityPageLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project activities")
	}

	return &dto.ProjectDetailResponse{
		Project:    project,
		Files:      files,
		Feedbacks:  feedbacks,
		Activities: activities,
	}, nil
}

// Update applies the freelancer's edit. The status field is an administrative
// override: any valid state may be set directly, including reopening a
// completed project.
func (s *ProjectService) Update(ctx context.Context, id string, req dto.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown project status")
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		project.Title = req.Title
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.DesignerName != "" {
		project.DesignerName = req.DesignerName
	}
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.Progress != nil {
		project.Progress = *req.Progress
	}
	if req.Deadline != "" {
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			return nil, err
		}
		project.Deadline = deadline
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}

	s.invalidateDashboard(ctx)
	return project, nil
}

// Finish archives the project. Completed is terminal for client actions, so
// finishing an already-completed project is a no-op.
func (s *ProjectService) Finish(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Closed() {
		return project, nil
	}

	if err := s.repo.SetStatus(ctx, id, models.StatusCompleted, models.ActivityCompleted, "Project Archived"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive project")
	}
	project.Status = models.StatusCompleted

	s.invalidateDashboard(ctx)
	s.logger.Info("project archived", zap.String("project_id", id))
	return project, nil
}

// Delete removes the project and everything attached to it. Database rows go
// atomically through the cascade; physical artifacts are handed to the
// cleanup queue so a slow disk never blocks the request.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	files, err := s.files.ListByProject(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project files")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}

	if s.cleanup != nil && len(files) > 0 {
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, f.FilePath)
		}
		job := jobs.Job{ID: uuid.NewString(), Type: jobTypeArtifactCleanup, Paths: paths}
		if err := s.cleanup.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue artifact cleanup", zap.String("project_id", id), zap.Error(err))
		}
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("project deleted", zap.String("project_id", id), zap.String("title", project.Title))
	return nil
}

func (s *ProjectService) load(ctx context.Context, id string) (*models.Project, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "project id is required")
	}
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

func (s *ProjectService) dashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache.Enabled() {
		var cached models.DashboardStats
		if hit, err := s.cache.Get(ctx, dashboardStatsCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, dashboardStatsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *ProjectService) invalidateDashboard(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func parseDeadline(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(deadlineLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must use YYYY-MM-DD")
	}
	return &t, nil
}

// newAccessToken mints 32 random bytes encoded URL-safe, long enough that
// guessing a live token is not practical.
func newAccessToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
