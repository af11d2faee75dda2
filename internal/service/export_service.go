package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/export"
)

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type partialTotaler interface {
	ComputePartialTotal(ctx context.Context, studentID, classID, partialID string) (*PartialTotalResult, error)
}

// ExportFile is a rendered document ready to stream to the client.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders class grade sheets. Totals are recomputed from source
// scores at render time, never read from a cache.
type ExportService struct {
	structures structureReader
	roster     rosterResolver
	grades     partialTotaler
	logger     *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(structures structureReader, roster rosterResolver, grades partialTotaler, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{structures: structures, roster: roster, grades: grades, logger: logger}
}

// GradeSheet renders one row per eligible student with the per-category raw
// scores and the partial total.
func (s *ExportService) GradeSheet(ctx context.Context, classID, partialID string, format ExportFormat) (*ExportFile, error) {
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	structure, err := s.structures.Structure(ctx, classID, partialID)
	if err != nil {
		return nil, err
	}
	if len(structure.Categories) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoStructure, "")
	}
	roster, err := s.roster.ResolveEligible(ctx, classID)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Grade Sheet %s / %s", classID, partialID),
		Columns: make([]string, 0, len(structure.Categories)+3),
	}
	table.Columns = append(table.Columns, "Student ID", "Student")
	for _, category := range structure.Categories {
		table.Columns = append(table.Columns, fmt.Sprintf("%s (%d%%)", category.Label, category.Weight))
	}
	table.Columns = append(table.Columns, "Total")

	for _, student := range roster {
		total, err := s.grades.ComputePartialTotal(ctx, student.StudentID, classID, partialID)
		if err != nil {
			return nil, err
		}
		row := make([]string, 0, len(table.Columns))
		row = append(row, student.StudentID, student.FullName)
		byCategory := make(map[string]CategoryBreakdown, len(total.Breakdown))
		for _, entry := range total.Breakdown {
			byCategory[entry.CategoryID] = entry
		}
		for _, category := range structure.Categories {
			entry, ok := byCategory[category.ID]
			if !ok || entry.Evaluations == 0 {
				row = append(row, "-")
				continue
			}
			row = append(row, strconv.FormatFloat(entry.RawScore, 'f', 2, 64))
		}
		row = append(row, strconv.FormatFloat(total.Total, 'f', 2, 64))
		table.Rows = append(table.Rows, row)
	}

	file := &ExportFile{}
	switch format {
	case ExportCSV:
		data, err := export.RenderCSV(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file.Data = data
		file.ContentType = "text/csv"
		file.FileName = fmt.Sprintf("grade-sheet-%s-%s.csv", classID, partialID)
	case ExportPDF:
		data, err := export.RenderPDF(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file.Data = data
		file.ContentType = "application/pdf"
		file.FileName = fmt.Sprintf("grade-sheet-%s-%s.pdf", classID, partialID)
	}
	s.logger.Sugar().Infow("grade sheet exported", "class_id", classID, "partial_id", partialID, "format", format, "students", len(roster))
	return file, nil
}

// GroupRoster renders a project's grouping, one row per member.
func (s *ExportService) GroupRoster(ctx context.Context, project *models.Project, groups []models.Group, format ExportFormat) (*ExportFile, error) {
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	table := export.Table{
		Title:   fmt.Sprintf("Groups %s", project.Name),
		Columns: []string{"Group", "Student ID"},
	}
	for _, group := range groups {
		for _, member := range group.Members {
			table.Rows = append(table.Rows, []string{strconv.Itoa(group.Number), member})
		}
	}

	file := &ExportFile{}
	switch format {
	case ExportCSV:
		data, err := export.RenderCSV(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file.Data = data
		file.ContentType = "text/csv"
		file.FileName = fmt.Sprintf("groups-%s.csv", project.ID)
	case ExportPDF:
		data, err := export.RenderPDF(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file.Data = data
		file.ContentType = "application/pdf"
		file.FileName = fmt.Sprintf("groups-%s.pdf", project.ID)
	}
	return file, nil
}
