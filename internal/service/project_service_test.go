package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/jobs"
)

type statusCall struct {
	projectID    string
	status       models.ProjectStatus
	activityType string
}

type projectStoreStub struct {
	projects     map[string]*models.Project
	created      []*models.Project
	updated      []*models.Project
	summaries    []models.ProjectSummary
	stats        *models.DashboardStats
	statusCalls  []statusCall
	deleted      []string
	createErr    error
	listErr      error
	statsErr     error
	updateErr    error
	setStatusErr error
	deleteErr    error
}

func (s *projectStoreStub) Create(ctx context.Context, project *models.Project) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, project)
	return nil
}

func (s *projectStoreStub) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if project, ok := s.projects[id]; ok {
		return project, nil
	}
	return nil, sql.ErrNoRows
}

func (s *projectStoreStub) List(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, error) {
	return s.summaries, s.listErr
}

func (s *projectStoreStub) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return s.stats, s.statsErr
}

func (s *projectStoreStub) Update(ctx context.Context, project *models.Project) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, project)
	return nil
}

func (s *projectStoreStub) SetStatus(ctx context.Context, projectID string, status models.ProjectStatus, activityType, description string) error {
	if s.setStatusErr != nil {
		return s.setStatusErr
	}
	s.statusCalls = append(s.statusCalls, statusCall{projectID: projectID, status: status, activityType: activityType})
	if project, ok := s.projects[projectID]; ok {
		project.Status = status
	}
	return nil
}

func (s *projectStoreStub) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type projectFilesStub struct {
	files []models.ProjectFile
	err   error
}

func (s *projectFilesStub) ListByProject(ctx context.Context, projectID string) ([]models.ProjectFile, error) {
	return s.files, s.err
}

type projectFeedbackStub struct {
	entries []models.Feedback
	err     error
}

func (s *projectFeedbackStub) ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	return s.entries, s.err
}

type projectActivityStub struct {
	entries []models.Activity
	err     error
}

func (s *projectActivityStub) ListByProject(ctx context.Context, projectID string, limit int) ([]models.Activity, error) {
	return s.entries, s.err
}

type cleanupQueueStub struct {
	jobs []jobs.Job
	err  error
}

func (s *cleanupQueueStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func newProjectService(repo *projectStoreStub, files *projectFilesStub, queue *cleanupQueueStub) *ProjectService {
	if files == nil {
		files = &projectFilesStub{}
	}
	return NewProjectService(repo, files, &projectFeedbackStub{}, &projectActivityStub{}, nil, queue, nil, zap.NewNop(), 3, 0)
}

func TestProjectServiceCreateDefaults(t *testing.T) {
	repo := &projectStoreStub{}
	service := newProjectService(repo, nil, nil)

	project, err := service.Create(context.Background(), dto.CreateProjectRequest{
		Title:      "Brand Refresh",
		ClientName: "Acme",
		Deadline:   "2026-10-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, project.Status)
	assert.Equal(t, 3, project.MaxRevisions)
	assert.Zero(t, project.UsedRevisions)
	assert.GreaterOrEqual(t, len(project.AccessToken), 40)
	require.NotNil(t, project.Deadline)
	require.Len(t, repo.created, 1)
}

func TestProjectServiceCreateMintsUniqueTokens(t *testing.T) {
	repo := &projectStoreStub{}
	service := newProjectService(repo, nil, nil)

	first, err := service.Create(context.Background(), dto.CreateProjectRequest{Title: "One", ClientName: "A"})
	require.NoError(t, err)
	second, err := service.Create(context.Background(), dto.CreateProjectRequest{Title: "Two", ClientName: "B"})
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestProjectServiceCreateValidation(t *testing.T) {
	service := newProjectService(&projectStoreStub{}, nil, nil)

	_, err := service.Create(context.Background(), dto.CreateProjectRequest{ClientName: "Acme"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Create(context.Background(), dto.CreateProjectRequest{Title: "X", ClientName: "Acme", Deadline: "next tuesday"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProjectServiceDashboardComputesDaysRemaining(t *testing.T) {
	deadline := time.Now().UTC().Add(5*24*time.Hour + time.Hour)
	repo := &projectStoreStub{
		summaries: []models.ProjectSummary{
			{Project: models.Project{ID: "p1", Deadline: &deadline}},
			{Project: models.Project{ID: "p2"}},
		},
		stats: &models.DashboardStats{ActiveProjects: 2},
	}
	service := newProjectService(repo, nil, nil)

	resp, err := service.Dashboard(context.Background(), models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Projects, 2)
	assert.Equal(t, 5, resp.Projects[0].DaysRemaining)
	assert.Zero(t, resp.Projects[1].DaysRemaining)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 2, resp.Stats.ActiveProjects)
}

func TestProjectServiceDashboardRejectsUnknownStatus(t *testing.T) {
	service := newProjectService(&projectStoreStub{}, nil, nil)
	_, err := service.Dashboard(context.Background(), models.ProjectFilter{Status: "archived"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProjectServiceGetMissing(t *testing.T) {
	service := newProjectService(&projectStoreStub{projects: map[string]*models.Project{}}, nil, nil)
	_, err := service.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProjectServiceUpdateStatusOverride(t *testing.T) {
	repo := &projectStoreStub{projects: map[string]*models.Project{
		"p1": {ID: "p1", Title: "Logo", Status: models.StatusCompleted},
	}}
	service := newProjectService(repo, nil, nil)

	project, err := service.Update(context.Background(), "p1", dto.UpdateProjectRequest{Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, project.Status)
	require.Len(t, repo.updated, 1)
}

func TestProjectServiceUpdateRejectsUnknownStatus(t *testing.T) {
	repo := &projectStoreStub{projects: map[string]*models.Project{"p1": {ID: "p1"}}}
	service := newProjectService(repo, nil, nil)

	_, err := service.Update(context.Background(), "p1", dto.UpdateProjectRequest{Status: "on_hold"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestProjectServiceFinishArchives(t *testing.T) {
	repo := &projectStoreStub{projects: map[string]*models.Project{
		"p1": {ID: "p1", Status: models.StatusFinalizing},
	}}
	service := newProjectService(repo, nil, nil)

	project, err := service.Finish(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, project.Status)
	require.Len(t, repo.statusCalls, 1)
	assert.Equal(t, models.StatusCompleted, repo.statusCalls[0].status)
	assert.Equal(t, models.ActivityCompleted, repo.statusCalls[0].activityType)
}

func TestProjectServiceFinishIdempotent(t *testing.T) {
	repo := &projectStoreStub{projects: map[string]*models.Project{
		"p1": {ID: "p1", Status: models.StatusCompleted},
	}}
	service := newProjectService(repo, nil, nil)

	project, err := service.Finish(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, project.Status)
	assert.Empty(t, repo.statusCalls)
}

func TestProjectServiceDeleteEnqueuesArtifactCleanup(t *testing.T) {
	repo := &projectStoreStub{projects: map[string]*models.Project{"p1": {ID: "p1", Title: "Logo"}}}
	files := &projectFilesStub{files: []models.ProjectFile{
		{ID: "f1", FilePath: "p1/a_v1.psd"},
		{ID: "f2", FilePath: "p1/a_v2.psd"},
	}}
	queue := &cleanupQueueStub{}
	service := newProjectService(repo, files, queue)

	require.NoError(t, service.Delete(context.Background(), "p1"))
	assert.Equal(t, []string{"p1"}, repo.deleted)
	require.Len(t, queue.jobs, 1)
	assert.ElementsMatch(t, []string{"p1/a_v1.psd", "p1/a_v2.psd"}, queue.jobs[0].Paths)
}

func TestProjectServiceDeleteSurvivesQueueFailure(t *testing.T) {
	repo := &projectStoreStub{projects: map[string]*models.Project{"p1": {ID: "p1"}}}
	files := &projectFilesStub{files: []models.ProjectFile{{ID: "f1", FilePath: "p1/a.psd"}}}
	queue := &cleanupQueueStub{err: assert.AnError}
	service := newProjectService(repo, files, queue)

	require.NoError(t, service.Delete(context.Background(), "p1"))
	assert.Equal(t, []string{"p1"}, repo.deleted)
}
