package dto

import "github.com/nandaprs/designtrack/internal/models"

// SubmitFeedbackRequest is the client form: a comment plus the chosen action.
type SubmitFeedbackRequest struct {
	Comment string                `form:"comment" json:"comment"`
	Action  models.FeedbackAction `form:"action" json:"action" validate:"required,oneof=revision approve"`
}

// ClientProjectResponse is the tokenized client view of a project.
type ClientProjectResponse struct {
	Project    *models.Project      `json:"project"`
	Files      []models.ProjectFile `json:"files"`
	Feedbacks  []models.Feedback    `json:"feedbacks"`
	Activities []models.Activity    `json:"activities"`
	// RevisionsLeft spares the client UI from computing quota arithmetic.
	RevisionsLeft int `json:"revisions_left"`
}
