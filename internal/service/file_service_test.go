package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
)

var testExtensions = []string{"png", "jpg", "jpeg", "psd", "pdf", "ai"}

type versionStoreStub struct {
	files     map[string]*models.ProjectFile
	created   []*models.ProjectFile
	deleted   *models.ProjectFile
	toggled   *models.ProjectFile
	createErr error
	deleteErr error
	toggleErr error
}

func (s *versionStoreStub) CreateVersion(ctx context.Context, file *models.ProjectFile) error {
	if s.createErr != nil {
		return s.createErr
	}
	file.Version = len(s.created) + 1
	file.IsLatest = true
	s.created = append(s.created, file)
	return nil
}

func (s *versionStoreStub) GetByID(ctx context.Context, id string) (*models.ProjectFile, error) {
	if file, ok := s.files[id]; ok {
		return file, nil
	}
	return nil, sql.ErrNoRows
}

func (s *versionStoreStub) ListByProject(ctx context.Context, projectID string) ([]models.ProjectFile, error) {
	var out []models.ProjectFile
	for _, file := range s.files {
		if file.ProjectID == projectID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (s *versionStoreStub) DeleteVersion(ctx context.Context, id string) (*models.ProjectFile, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	if s.deleted == nil {
		return nil, sql.ErrNoRows
	}
	return s.deleted, nil
}

func (s *versionStoreStub) ToggleDownloadable(ctx context.Context, id string) (*models.ProjectFile, error) {
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	if s.toggled == nil {
		return nil, sql.ErrNoRows
	}
	return s.toggled, nil
}

type blobStoreStub struct {
	saved   []string
	removed []string
	saveErr error
	delErr  error
}

func (s *blobStoreStub) SaveStream(filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	s.saved = append(s.saved, filename)
	return filename, nil
}

func (s *blobStoreStub) Delete(filename string) error {
	s.removed = append(s.removed, filename)
	return s.delErr
}

type projectReaderStub struct {
	projects map[string]*models.Project
}

func (s *projectReaderStub) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if project, ok := s.projects[id]; ok {
		return project, nil
	}
	return nil, sql.ErrNoRows
}

func newFileService(repo *versionStoreStub, projects *projectReaderStub, blob *blobStoreStub) *FileService {
	return NewFileService(repo, projects, blob, nil, zap.NewNop(), testExtensions, 50*1024*1024)
}

func uploadInput(name string, size int64) FileUpload {
	return FileUpload{FileName: name, Size: size, Reader: bytes.NewBufferString("design bytes")}
}

func TestFileServiceUploadRejectsUnknownExtension(t *testing.T) {
	blob := &blobStoreStub{}
	service := newFileService(&versionStoreStub{}, &projectReaderStub{}, blob)

	_, err := service.Upload(context.Background(), "p1", uploadInput("payload.exe", 10))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidFile.Code, appErrors.FromError(err).Code)
	assert.Empty(t, blob.saved)
}

func TestFileServiceUploadRejectsOversizedFile(t *testing.T) {
	blob := &blobStoreStub{}
	service := newFileService(&versionStoreStub{}, &projectReaderStub{}, blob)

	_, err := service.Upload(context.Background(), "p1", uploadInput("big.psd", 50*1024*1024+1))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidFile.Code, appErrors.FromError(err).Code)
	assert.Empty(t, blob.saved)
}

func TestFileServiceUploadUnknownProject(t *testing.T) {
	service := newFileService(&versionStoreStub{}, &projectReaderStub{}, &blobStoreStub{})

	_, err := service.Upload(context.Background(), "ghost", uploadInput("logo.png", 10))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFileServiceUploadStoresVersion(t *testing.T) {
	repo := &versionStoreStub{}
	blob := &blobStoreStub{}
	projects := &projectReaderStub{projects: map[string]*models.Project{"p1": {ID: "p1"}}}
	service := newFileService(repo, projects, blob)

	in := uploadInput("Final Logo.psd", 2048)
	in.IsFinal = true
	file, err := service.Upload(context.Background(), "p1", in)
	require.NoError(t, err)
	assert.Equal(t, 1, file.Version)
	assert.Equal(t, "psd", file.FileType)
	assert.True(t, file.IsDownloadable)
	assert.Equal(t, "Final Logo.psd", file.FileName)
	assert.True(t, strings.HasPrefix(file.FilePath, "p1/"))
	assert.NotContains(t, file.FilePath, " ")
	require.Len(t, blob.saved, 1)
}

func TestFileServiceUploadCleansUpOnLedgerFailure(t *testing.T) {
	repo := &versionStoreStub{createErr: assert.AnError}
	blob := &blobStoreStub{}
	projects := &projectReaderStub{projects: map[string]*models.Project{"p1": {ID: "p1"}}}
	service := newFileService(repo, projects, blob)

	_, err := service.Upload(context.Background(), "p1", uploadInput("logo.png", 10))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	require.Len(t, blob.saved, 1)
	assert.Equal(t, blob.saved, blob.removed)
}

func TestFileServiceDeleteIgnoresArtifactFailure(t *testing.T) {
	repo := &versionStoreStub{deleted: &models.ProjectFile{ID: "f1", FilePath: "p1/logo.png"}}
	blob := &blobStoreStub{delErr: assert.AnError}
	service := newFileService(repo, &projectReaderStub{}, blob)

	require.NoError(t, service.Delete(context.Background(), "f1"))
	assert.Equal(t, []string{"p1/logo.png"}, blob.removed)
}

func TestFileServiceDeleteMissing(t *testing.T) {
	repo := &versionStoreStub{deleteErr: sql.ErrNoRows}
	service := newFileService(repo, &projectReaderStub{}, &blobStoreStub{})

	err := service.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFileServiceToggleLock(t *testing.T) {
	repo := &versionStoreStub{toggled: &models.ProjectFile{ID: "f1", IsDownloadable: true}}
	service := newFileService(repo, &projectReaderStub{}, &blobStoreStub{})

	file, err := service.ToggleLock(context.Background(), "f1")
	require.NoError(t, err)
	assert.True(t, file.IsDownloadable)

	repo.toggled = nil
	repo.toggleErr = sql.ErrNoRows
	_, err = service.ToggleLock(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
