package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academica-api/internal/models"
	"github.com/noah-isme/academica-api/pkg/config"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

func newExportFixture() *ExportService {
	structure := tasksExamsStructure()
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-task", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-exam", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-task": {EvaluationID: "ev-task", Value: 80},
		"ev-exam": {EvaluationID: "ev-exam", Value: 70},
	}}
	grades := NewGradeService(structure, evaluations, scores, partialStub{}, config.MissingScoreZero, nil)
	roster := rosterStub{students: []models.RosterStudent{
		{StudentID: "stu-1", FullName: "Ana Pérez"},
	}}
	return NewExportService(structure, roster, grades, nil)
}

func TestExportServiceGradeSheetCSV(t *testing.T) {
	service := newExportFixture()

	file, err := service.GradeSheet(context.Background(), "class-1", "p1", ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "grade-sheet-class-1-p1.csv", file.FileName)

	content := string(file.Data)
	assert.Contains(t, content, "Tasks (40%)")
	assert.Contains(t, content, "Exams (60%)")
	assert.Contains(t, content, "stu-1,Ana Pérez,80.00,70.00,74.00")
}

func TestExportServiceGradeSheetPDF(t *testing.T) {
	service := newExportFixture()

	file, err := service.GradeSheet(context.Background(), "class-1", "p1", ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceGradeSheetUnsupportedFormat(t *testing.T) {
	service := newExportFixture()

	_, err := service.GradeSheet(context.Background(), "class-1", "p1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceGradeSheetNoStructure(t *testing.T) {
	service := NewExportService(structureStub{}, rosterStub{students: rosterOf(1)}, nil, nil)

	_, err := service.GradeSheet(context.Background(), "class-1", "p1", ExportCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoStructure.Code, appErrors.FromError(err).Code)
}

func TestExportServiceGroupRosterCSV(t *testing.T) {
	service := newExportFixture()
	project := &models.Project{ID: "proj-1", Name: "Robotics"}
	groups := []models.Group{
		{Number: 1, Members: []string{"stu-1", "stu-2"}},
		{Number: 2, Members: []string{"stu-3"}},
	}

	file, err := service.GroupRoster(context.Background(), project, groups, ExportCSV)
	require.NoError(t, err)
	content := string(file.Data)
	assert.Contains(t, content, "1,stu-1")
	assert.Contains(t, content, "2,stu-3")
}
