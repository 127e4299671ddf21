package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/service"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/response"
)

// FileHandler exposes design file upload and management endpoints.
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler constructs handler.
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload godoc
// @Summary Upload the next design file version
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID"
// @Param file formData file true "Design file"
// @Param is_final formData bool false "Release for client download immediately"
// @Success 201 {object} response.Envelope
// @Router /projects/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	var req dto.UploadFileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload form"))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file part is required"))
		return
	}
	part, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer part.Close() //nolint:errcheck

	file, err := h.files.Upload(c.Request.Context(), c.Param("id"), service.FileUpload{
		FileName: header.Filename,
		Size:     header.Size,
		Reader:   part,
		IsFinal:  req.IsFinal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Delete godoc
// @Summary Delete one file version and its artifact
// @Tags Files
// @Param id path string true "File ID"
// @Success 204
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleLock godoc
// @Summary Toggle the client download gate on a file version
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/lock [post]
func (h *FileHandler) ToggleLock(c *gin.Context) {
	file, err := h.files.ToggleLock(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file, nil)
}
