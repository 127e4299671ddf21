package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/models"
	"github.com/nandaprs/designtrack/internal/service"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/response"
)

type clientOperator interface {
	View(ctx context.Context, token string) (*dto.ClientProjectResponse, error)
	SubmitFeedback(ctx context.Context, token string, req dto.SubmitFeedbackRequest) (*models.Project, *models.Feedback, error)
	Download(ctx context.Context, token, fileID, signature string) (*service.FileDownload, error)
	DownloadURL(ctx context.Context, token, fileID string) (*dto.FileDownloadResponse, error)
}

// ClientHandler exposes the tokenized client endpoints. No session or login
// exists here; the access token in the path is the whole credential.
type ClientHandler struct {
	clients clientOperator
}

// NewClientHandler constructs handler.
func NewClientHandler(clients clientOperator) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// View godoc
// @Summary Client project view
// @Tags Client
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} response.Envelope
// @Router /client/{token} [get]
func (h *ClientHandler) View(c *gin.Context) {
	view, err := h.clients.View(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SubmitFeedback godoc
// @Summary Request a revision or approve the design
// @Tags Client
// @Accept json
// @Produce json
// @Param token path string true "Access token"
// @Param payload body dto.SubmitFeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Router /client/{token}/feedback [post]
func (h *ClientHandler) SubmitFeedback(c *gin.Context) {
	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload"))
		return
	}
	project, feedback, err := h.clients.SubmitFeedback(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"project":  project,
		"feedback": feedback,
	}, nil)
}

// DownloadURL godoc
// @Summary Signed, expiring download link for a released file
// @Tags Client
// @Produce json
// @Param token path string true "Access token"
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /client/{token}/files/{id}/download-url [get]
func (h *ClientHandler) DownloadURL(c *gin.Context) {
	link, err := h.clients.DownloadURL(c.Request.Context(), c.Param("token"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Stream a released file version
// @Tags Client
// @Produce octet-stream
// @Param token path string true "Access token"
// @Param id path string true "File ID"
// @Param sig query string false "Signed download token"
// @Success 200
// @Router /client/{token}/files/{id}/download [get]
func (h *ClientHandler) Download(c *gin.Context) {
	download, err := h.clients.Download(c.Request.Context(), c.Param("token"), c.Param("id"), c.Query("sig"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Content.Close() //nolint:errcheck

	contentType := mime.TypeByExtension("." + download.File.FileType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.File.FileName),
	}
	c.DataFromReader(http.StatusOK, download.File.SizeBytes, contentType, download.Content, extraHeaders)
}
