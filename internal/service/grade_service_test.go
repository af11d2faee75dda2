package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academica-api/internal/models"
	"github.com/noah-isme/academica-api/pkg/config"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type structureStub struct {
	categories []models.WeightCategory
	err        error
}

func (s structureStub) Structure(ctx context.Context, classID, partialID string) (*models.WeightStructure, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.WeightStructure{ClassID: classID, PartialID: partialID, Categories: s.categories}, nil
}

type evaluationStub struct {
	byPartial map[string][]models.Evaluation
}

func (s evaluationStub) ListByScope(ctx context.Context, classID, partialID string) ([]models.Evaluation, error) {
	return s.byPartial[partialID], nil
}

func (s evaluationStub) CountByScope(ctx context.Context, classID, partialID string) (int, error) {
	return len(s.byPartial[partialID]), nil
}

type scoreStub struct {
	scores map[string]models.Score
}

func (s scoreStub) MapForStudent(ctx context.Context, studentID string, evaluationIDs []string) (map[string]models.Score, error) {
	result := make(map[string]models.Score)
	for _, id := range evaluationIDs {
		if score, ok := s.scores[id]; ok {
			result[id] = score
		}
	}
	return result, nil
}

type partialStub struct {
	partials []models.Partial
}

func (s partialStub) ListPartials(ctx context.Context, periodID string) ([]models.Partial, error) {
	return s.partials, nil
}

func categoryID(id string) *string { return &id }

func tasksExamsStructure() structureStub {
	return structureStub{categories: []models.WeightCategory{
		{ID: "cat-tasks", Label: "Tasks", Weight: 40},
		{ID: "cat-exams", Label: "Exams", Weight: 60},
	}}
}

func TestGradeServiceComputePartialTotalWeightedMean(t *testing.T) {
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
	service := NewGradeService(tasksExamsStructure(), evaluations, scores, partialStub{}, config.MissingScoreZero, nil)

	result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.NoError(t, err)
	assert.InDelta(t, 74.00, result.Total, 0.0001)
	require.Len(t, result.Breakdown, 2)
	assert.InDelta(t, 32.0, result.Breakdown[0].Contribution, 0.0001)
	assert.InDelta(t, 42.0, result.Breakdown[1].Contribution, 0.0001)
}

func TestGradeServiceComputePartialTotalScalesToMaxScore(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-task", CategoryID: categoryID("cat-tasks"), MaxScore: 20},
			{ID: "ev-exam", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-task": {EvaluationID: "ev-task", Value: 16},
		"ev-exam": {EvaluationID: "ev-exam", Value: 70},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scores, partialStub{}, config.MissingScoreZero, nil)

	result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.NoError(t, err)
	// 16/20 is the same 80% as 80/100.
	assert.InDelta(t, 74.00, result.Total, 0.0001)
}

func TestGradeServiceMissingScoresCountAsZero(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-1", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-2", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-3", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-1": {EvaluationID: "ev-1", Value: 100},
		"ev-3": {EvaluationID: "ev-3", Value: 90},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scores, partialStub{}, config.MissingScoreZero, nil)

	result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.NoError(t, err)
	// Tasks mean (100+0)/2 = 50 at 40%, exams 90 at 60%.
	assert.InDelta(t, 74.00, result.Total, 0.0001)
	assert.Equal(t, 1, result.Breakdown[0].Graded)
}

func TestGradeServiceExcludedPolicyDropsUngraded(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-1", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-2", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-3", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-1": {EvaluationID: "ev-1", Value: 100},
		"ev-3": {EvaluationID: "ev-3", Value: 90},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scores, partialStub{}, config.MissingScoreExcluded, nil)

	result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.NoError(t, err)
	// Tasks mean over graded only = 100 at 40%, exams 90 at 60%.
	assert.InDelta(t, 94.00, result.Total, 0.0001)
}

func TestGradeServiceAllMissingScoresZero(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-1", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-2", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scoreStub{}, partialStub{}, config.MissingScoreZero, nil)

	result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestGradeServiceReweightsEmptyCategories(t *testing.T) {
	// Only the exams category has evaluations, so its weight becomes the
	// whole denominator and a full exam score yields a full total.
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-exam", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-exam": {EvaluationID: "ev-exam", Value: 100},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scores, partialStub{}, config.MissingScoreZero, nil)

	result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.NoError(t, err)
	assert.InDelta(t, 100.00, result.Total, 0.0001)
}

func TestGradeServiceNoStructure(t *testing.T) {
	service := NewGradeService(structureStub{}, evaluationStub{}, scoreStub{}, partialStub{}, config.MissingScoreZero, nil)
	_, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoStructure.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceInvalidStructure(t *testing.T) {
	structure := structureStub{categories: []models.WeightCategory{
		{ID: "cat-tasks", Label: "Tasks", Weight: 40},
		{ID: "cat-exams", Label: "Exams", Weight: 50},
	}}
	service := NewGradeService(structure, evaluationStub{}, scoreStub{}, partialStub{}, config.MissingScoreZero, nil)
	_, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStructure.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceRejectsUncategorizedEvaluation(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {{ID: "ev-orphan", MaxScore: 100}},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scoreStub{}, partialStub{}, config.MissingScoreZero, nil)
	_, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceRejectsEvaluationOutsideStructure(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-task", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-stray", CategoryID: categoryID("cat-other-partial"), MaxScore: 100},
		},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-task":  {EvaluationID: "ev-task", Value: 80},
		"ev-stray": {EvaluationID: "ev-stray", Value: 100},
	}}
	service := NewGradeService(tasksExamsStructure(), evaluations, scores, partialStub{}, config.MissingScoreZero, nil)

	_, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServicePartialTotalMonotonicUnderScoreIncrease(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {
			{ID: "ev-1", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-2", CategoryID: categoryID("cat-tasks"), MaxScore: 100},
			{ID: "ev-3", CategoryID: categoryID("cat-exams"), MaxScore: 100},
		},
	}}
	baseline := map[string]models.Score{
		"ev-1": {EvaluationID: "ev-1", Value: 60},
		"ev-3": {EvaluationID: "ev-3", Value: 70},
	}

	totalFor := func(policy string, scores map[string]models.Score) float64 {
		service := NewGradeService(tasksExamsStructure(), evaluations, scoreStub{scores: scores}, partialStub{}, policy, nil)
		result, err := service.ComputePartialTotal(context.Background(), "stu-1", "class-1", "p1")
		require.NoError(t, err)
		return result.Total
	}

	for _, policy := range []string{config.MissingScoreZero, config.MissingScoreExcluded} {
		before := totalFor(policy, baseline)

		raised := map[string]models.Score{
			"ev-1": {EvaluationID: "ev-1", Value: 85},
			"ev-3": {EvaluationID: "ev-3", Value: 70},
		}
		assert.GreaterOrEqual(t, totalFor(policy, raised), before, "policy %s", policy)
	}

	// Under the zero policy an ungraded evaluation counts as 0, so grading
	// it is also a score increase and must not lower the total.
	before := totalFor(config.MissingScoreZero, baseline)
	graded := map[string]models.Score{
		"ev-1": {EvaluationID: "ev-1", Value: 60},
		"ev-2": {EvaluationID: "ev-2", Value: 40},
		"ev-3": {EvaluationID: "ev-3", Value: 70},
	}
	assert.GreaterOrEqual(t, totalFor(config.MissingScoreZero, graded), before)
}

func TestGradeServicePeriodAverage(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {{ID: "ev-1", CategoryID: categoryID("cat-tasks"), MaxScore: 100}},
		"p2": {{ID: "ev-2", CategoryID: categoryID("cat-tasks"), MaxScore: 100}},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-1": {EvaluationID: "ev-1", Value: 74},
		"ev-2": {EvaluationID: "ev-2", Value: 90},
	}}
	structure := structureStub{categories: []models.WeightCategory{
		{ID: "cat-tasks", Label: "Tasks", Weight: 100},
	}}
	partials := partialStub{partials: []models.Partial{
		{ID: "p1", Ordinal: 1, Name: "First"},
		{ID: "p2", Ordinal: 2, Name: "Second"},
	}}
	service := NewGradeService(structure, evaluations, scores, partials, config.MissingScoreZero, nil)

	result, err := service.ComputePeriodAverage(context.Background(), "stu-1", "class-1", "period-1")
	require.NoError(t, err)
	assert.InDelta(t, 82.00, result.Average, 0.0001)
	require.Len(t, result.Partials, 2)
}

func TestGradeServicePeriodAverageSkipsEmptyPartials(t *testing.T) {
	evaluations := evaluationStub{byPartial: map[string][]models.Evaluation{
		"p1": {{ID: "ev-1", CategoryID: categoryID("cat-tasks"), MaxScore: 100}},
	}}
	scores := scoreStub{scores: map[string]models.Score{
		"ev-1": {EvaluationID: "ev-1", Value: 80},
	}}
	structure := structureStub{categories: []models.WeightCategory{
		{ID: "cat-tasks", Label: "Tasks", Weight: 100},
	}}
	partials := partialStub{partials: []models.Partial{
		{ID: "p1", Ordinal: 1, Name: "First"},
		{ID: "p2", Ordinal: 2, Name: "Second"},
	}}
	service := NewGradeService(structure, evaluations, scores, partials, config.MissingScoreZero, nil)

	result, err := service.ComputePeriodAverage(context.Background(), "stu-1", "class-1", "period-1")
	require.NoError(t, err)
	assert.InDelta(t, 80.00, result.Average, 0.0001)
	require.Len(t, result.Partials, 1)
}

func TestGradeServicePeriodAverageNoGradablePartials(t *testing.T) {
	partials := partialStub{partials: []models.Partial{{ID: "p1", Ordinal: 1}}}
	service := NewGradeService(tasksExamsStructure(), evaluationStub{}, scoreStub{}, partials, config.MissingScoreZero, nil)
	_, err := service.ComputePeriodAverage(context.Background(), "stu-1", "class-1", "period-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoGradablePartials.Code, appErrors.FromError(err).Code)
}

func TestRoundHalfUp(t *testing.T) {
	assert.InDelta(t, 0.13, roundHalfUp(0.125), 0.0001)
	assert.InDelta(t, 74.00, roundHalfUp(74.0049), 0.0001)
	assert.InDelta(t, 33.33, roundHalfUp(100.0/3), 0.0001)
	assert.InDelta(t, 66.67, roundHalfUp(200.0/3), 0.0001)
}
