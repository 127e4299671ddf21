package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandaprs/designtrack/internal/dto"
	"github.com/nandaprs/designtrack/internal/models"
	"github.com/nandaprs/designtrack/internal/service"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/response"
)

// ProjectHandler exposes the freelancer project endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
	reports  *service.ReportService
}

// NewProjectHandler constructs handler.
func NewProjectHandler(projects *service.ProjectService, reports *service.ReportService) *ProjectHandler {
	return &ProjectHandler{projects: projects, reports: reports}
}

// Dashboard godoc
// @Summary Project dashboard with aggregates and stats
// @Tags Projects
// @Produce json
// @Param status query string false "Filter by status; defaults to active projects"
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	filter := models.ProjectFilter{Status: models.ProjectStatus(c.Query("status"))}
	dashboard, err := h.projects.Dashboard(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Create godoc
// @Summary Create a project and mint its client access token
// @Tags Projects
// @Accept json
// @Produce json
// @Param payload body dto.CreateProjectRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload"))
		return
	}
	project, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	// The token is returned once here so the freelancer can share the link.
	response.JSON(c, http.StatusCreated, gin.H{
		"project":      project,
		"access_token": project.AccessToken,
	}, nil)
}

// Detail godoc
// @Summary Project detail with files, feedback and timeline
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *ProjectHandler) Detail(c *gin.Context) {
	detail, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Edit project metadata, including the status override
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body dto.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload"))
		return
	}
	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Finish godoc
// @Summary Archive the project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/finish [post]
func (h *ProjectHandler) Finish(c *gin.Context) {
	project, err := h.projects.Finish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Delete godoc
// @Summary Delete the project and all attached records and artifacts
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the project history as CSV or PDF
// @Tags Projects
// @Produce octet-stream
// @Param id path string true "Project ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /projects/{id}/report [get]
func (h *ProjectHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	report, err := h.reports.Export(c.Request.Context(), c.Param("id"), service.ReportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
