package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/storage"
)

type tokenStoreStub struct {
	projects    map[string]*models.Project
	statusCalls []statusCall
}

func (s *tokenStoreStub) GetByToken(ctx context.Context, token string) (*models.Project, error) {
	if project, ok := s.projects[token]; ok {
		return project, nil
	}
	return nil, sql.ErrNoRows
}

func (s *tokenStoreStub) SetStatus(ctx context.Context, projectID string, status models.ProjectStatus, activityType, description string) error {
	s.statusCalls = append(s.statusCalls, statusCall{projectID: projectID, status: status, activityType: activityType})
	return nil
}

type quotaFeedbackStub struct {
	project *models.Project
	entries []models.Feedback
}

func (s *quotaFeedbackStub) ConsumeRevision(ctx context.Context, projectID, comment string) (*models.Feedback, error) {
	if s.project.UsedRevisions >= s.project.MaxRevisions || s.project.Closed() {
		return nil, sql.ErrNoRows
	}
	s.project.UsedRevisions++
	feedback := models.Feedback{
		ID:             "fb-1",
		ProjectID:      projectID,
		Comment:        comment,
		RevisionNumber: s.project.UsedRevisions,
		CreatedAt:      time.Now().UTC(),
	}
	s.entries = append(s.entries, feedback)
	return &feedback, nil
}

func (s *quotaFeedbackStub) ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	return s.entries, nil
}

type clientTestEnv struct {
	service  *ClientService
	projects *tokenStoreStub
	files    *versionStoreStub
	feedback *quotaFeedbackStub
	store    *storage.LocalStorage
}

func newClientEnv(t *testing.T, project *models.Project) clientTestEnv {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	projects := &tokenStoreStub{projects: map[string]*models.Project{project.AccessToken: project}}
	files := &versionStoreStub{files: map[string]*models.ProjectFile{}}
	feedback := &quotaFeedbackStub{project: project}
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)

	service := NewClientService(projects, files, feedback, &projectActivityStub{}, store, signer, nil, nil, nil, zap.NewNop(), "/api/v1")
	return clientTestEnv{service: service, projects: projects, files: files, feedback: feedback, store: store}
}

func TestClientServiceUnknownToken(t *testing.T) {
	env := newClientEnv(t, &models.Project{ID: "p1", AccessToken: "tok"})

	_, err := env.service.View(context.Background(), "wrong-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClientServiceViewIncludesQuota(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", MaxRevisions: 3, UsedRevisions: 1, Status: models.StatusInProgress}
	env := newClientEnv(t, project)

	resp, err := env.service.View(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RevisionsLeft)
}

func TestClientServiceRevisionQuotaSequence(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", MaxRevisions: 1, Status: models.StatusInProgress}
	env := newClientEnv(t, project)

	updated, feedback, err := env.service.SubmitFeedback(context.Background(), "tok", dto.SubmitFeedbackRequest{
		Comment: "bigger logo please",
		Action:  models.ActionRevision,
	})
	require.NoError(t, err)
	require.NotNil(t, feedback)
	assert.Equal(t, 1, feedback.RevisionNumber)
	assert.Equal(t, models.StatusNeedsRevision, updated.Status)
	assert.Equal(t, 1, updated.UsedRevisions)

	_, _, err = env.service.SubmitFeedback(context.Background(), "tok", dto.SubmitFeedbackRequest{
		Comment: "one more tweak",
		Action:  models.ActionRevision,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQuotaExceeded.Code, appErrors.FromError(err).Code)
}

func TestClientServiceRevisionRequiresComment(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", MaxRevisions: 3, Status: models.StatusInProgress}
	env := newClientEnv(t, project)

	_, _, err := env.service.SubmitFeedback(context.Background(), "tok", dto.SubmitFeedbackRequest{Action: models.ActionRevision})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClientServiceFeedbackOnCompletedProject(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", MaxRevisions: 3, Status: models.StatusCompleted}
	env := newClientEnv(t, project)

	_, _, err := env.service.SubmitFeedback(context.Background(), "tok", dto.SubmitFeedbackRequest{
		Comment: "reopen please",
		Action:  models.ActionRevision,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProjectClosed.Code, appErrors.FromError(err).Code)
}

func TestClientServiceApproveMovesToFinalizing(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", MaxRevisions: 3, Status: models.StatusNeedsRevision}
	env := newClientEnv(t, project)

	updated, feedback, err := env.service.SubmitFeedback(context.Background(), "tok", dto.SubmitFeedbackRequest{Action: models.ActionApprove})
	require.NoError(t, err)
	assert.Nil(t, feedback)
	assert.Equal(t, models.StatusFinalizing, updated.Status)
	require.Len(t, env.projects.statusCalls, 1)
	assert.Equal(t, models.ActivityApproved, env.projects.statusCalls[0].activityType)
}

func TestClientServiceDownloadLockedFile(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", Status: models.StatusInProgress}
	env := newClientEnv(t, project)
	env.files.files["f1"] = &models.ProjectFile{ID: "f1", ProjectID: "p1", FilePath: "p1/logo.png", IsDownloadable: false}

	_, err := env.service.Download(context.Background(), "tok", "f1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileLocked.Code, appErrors.FromError(err).Code)
}

func TestClientServiceDownloadScopedToProject(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", Status: models.StatusInProgress}
	env := newClientEnv(t, project)
	env.files.files["f9"] = &models.ProjectFile{ID: "f9", ProjectID: "other", IsDownloadable: true}

	_, err := env.service.Download(context.Background(), "tok", "f9", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClientServiceDownloadRoundTrip(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", Status: models.StatusInProgress}
	env := newClientEnv(t, project)

	_, err := env.store.Save("p1/logo.png", []byte("png bytes"))
	require.NoError(t, err)
	env.files.files["f1"] = &models.ProjectFile{ID: "f1", ProjectID: "p1", FileName: "logo.png", FilePath: "p1/logo.png", IsDownloadable: true}

	link, err := env.service.DownloadURL(context.Background(), "tok", "f1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.DownloadURL, "/api/v1/client/tok/files/f1/download?sig="))
	assert.True(t, link.ExpiresAt.After(time.Now()))

	sig := strings.TrimPrefix(link.DownloadURL, "/api/v1/client/tok/files/f1/download?sig=")
	download, err := env.service.Download(context.Background(), "tok", "f1", sig)
	require.NoError(t, err)
	defer download.Content.Close()
	content, err := io.ReadAll(download.Content)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(content))
}

func TestClientServiceDownloadRejectsForeignSignature(t *testing.T) {
	project := &models.Project{ID: "p1", AccessToken: "tok", Status: models.StatusInProgress}
	env := newClientEnv(t, project)

	_, err := env.store.Save("p1/logo.png", []byte("png bytes"))
	require.NoError(t, err)
	env.files.files["f1"] = &models.ProjectFile{ID: "f1", ProjectID: "p1", FilePath: "p1/logo.png", IsDownloadable: true}

	foreign := storage.NewSignedURLSigner("test-secret", time.Minute)
	sig, _, err := foreign.Generate("f2", "p1/other.png")
	require.NoError(t, err)

	_, err = env.service.Download(context.Background(), "tok", "f1", sig)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
