package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nandaprs/designtrack/internal/models"
	appErrors "github.com/nandaprs/designtrack/pkg/errors"
	"github.com/nandaprs/designtrack/pkg/export"
)

// ReportFormat selects the export rendering.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// Report is a rendered project history document ready to serve.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

type reportProjectReader interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
}

// ReportService renders a project's activity history as CSV or PDF.
type ReportService struct {
	projects   reportProjectReader
	activities projectActivityLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(projects reportProjectReader, activities projectActivityLister, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		projects:   projects,
		activities: activities,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
	}
}

// Export renders the full timeline for one project.
func (s *ReportService) Export(ctx context.Context, projectID string, format ReportFormat) (*Report, error) {
	if projectID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "project id is required")
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}

	entries, err := s.activities.ListByProject(ctx, projectID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project activities")
	}

	dataset := export.Dataset{
		Headers: []string{"Time", "Event", "Detail"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	// Timeline reports read oldest first.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Time":   entry.CreatedAt.Format("2006-01-02 15:04"),
			"Event":  entry.ActivityType,
			"Detail": entry.Description,
		})
	}

	slug := projectSlug(project.Title)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{
			FileName:    fmt.Sprintf("%s_history_%s.csv", slug, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		summary := []export.SummaryLine{
			{Label: "Client", Value: project.ClientName},
			{Label: "Designer", Value: project.DesignerName},
			{Label: "Status", Value: string(project.Status)},
			{Label: "Progress", Value: fmt.Sprintf("%d%%", project.Progress)},
			{Label: "Revisions", Value: fmt.Sprintf("%d of %d used", project.UsedRevisions, project.MaxRevisions)},
		}
		if project.Deadline != nil {
			summary = append(summary, export.SummaryLine{Label: "Deadline", Value: project.Deadline.Format("2006-01-02")})
		}
		content, err := s.pdf.Render(dataset, project.Title, summary)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &Report{
			FileName:    fmt.Sprintf("%s_history_%s.pdf", slug, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
}

func projectSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "project"
	}
	return slug
}
