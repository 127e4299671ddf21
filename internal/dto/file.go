package dto

import (
	"time"

	"github.com/nandaprs/designtrack/internal/models"
)

// UploadFileRequest carries the upload form fields next to the multipart
// file part.
type UploadFileRequest struct {
	// IsFinal marks the version downloadable by the client right away.
	IsFinal bool `form:"is_final" json:"is_final"`
}

// FileDownloadResponse enriches file metadata with a signed download URL.
type FileDownloadResponse struct {
	models.ProjectFile
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
