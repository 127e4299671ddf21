package dto

import "github.com/nandaprs/designtrack/internal/models"

// CreateProjectRequest captures the new-project form.
type CreateProjectRequest struct {
	Title        string `form:"title" json:"title" validate:"required"`
	ClientName   string `form:"client_name" json:"client_name" validate:"required"`
	ClientEmail  string `form:"client_email" json:"client_email" validate:"omitempty,email"`
	Description  string `form:"description" json:"description"`
	Deadline     string `form:"deadline" json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	DesignerName string `form:"designer_name" json:"designer_name"`
}

// UpdateProjectRequest carries the freelancer's edit form. Status here is an
// administrative override applied verbatim, outside the trigger-driven
// transitions.
type UpdateProjectRequest struct {
	Title        string               `form:"title" json:"title"`
	Description  string               `form:"description" json:"description"`
	Deadline     string               `form:"deadline" json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Status       models.ProjectStatus `form:"status" json:"status"`
	DesignerName string               `form:"designer_name" json:"designer_name"`
	Progress     *int                 `form:"progress" json:"progress" validate:"omitempty,gte=0,lte=100"`
}

// ProjectDetailResponse bundles the project with its files, feedback and
// activity history.
type ProjectDetailResponse struct {
	Project    *models.Project      `json:"project"`
	Files      []models.ProjectFile `json:"files"`
	Feedbacks  []models.Feedback    `json:"feedbacks"`
	Activities []models.Activity    `json:"activities"`
}

// DashboardResponse is the freelancer landing payload.
type DashboardResponse struct {
	Projects []models.ProjectSummary `json:"projects"`
	Stats    *models.DashboardStats  `json:"stats"`
}
