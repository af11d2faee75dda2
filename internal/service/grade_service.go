package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	"github.com/noah-isme/academica-api/pkg/config"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type evaluationScopeReader interface {
	ListByScope(ctx context.Context, classID, partialID string) ([]models.Evaluation, error)
	CountByScope(ctx context.Context, classID, partialID string) (int, error)
}

type scoreReader interface {
	MapForStudent(ctx context.Context, studentID string, evaluationIDs []string) (map[string]models.Score, error)
}

type partialLister interface {
	ListPartials(ctx context.Context, periodID string) ([]models.Partial, error)
}

type structureReader interface {
	Structure(ctx context.Context, classID, partialID string) (*models.WeightStructure, error)
}

// CategoryBreakdown is one audit line of a partial total.
type CategoryBreakdown struct {
	CategoryID   string  `json:"category_id"`
	Label        string  `json:"label"`
	Weight       int     `json:"weight"`
	RawScore     float64 `json:"raw_score"`
	Contribution float64 `json:"contribution"`
	Evaluations  int     `json:"evaluations"`
	Graded       int     `json:"graded"`
}

// PartialTotalResult is the outcome of a partial-term aggregation.
type PartialTotalResult struct {
	StudentID string              `json:"student_id"`
	ClassID   string              `json:"class_id"`
	PartialID string              `json:"partial_id"`
	Total     float64             `json:"total"`
	Breakdown []CategoryBreakdown `json:"breakdown"`
}

// PartialAverageEntry is one partial's contribution to a period average.
type PartialAverageEntry struct {
	PartialID string  `json:"partial_id"`
	Name      string  `json:"name"`
	Total     float64 `json:"total"`
}

// PeriodAverageResult is the outcome of a full-period aggregation.
type PeriodAverageResult struct {
	StudentID string                `json:"student_id"`
	ClassID   string                `json:"class_id"`
	PeriodID  string                `json:"period_id"`
	Average   float64               `json:"average"`
	Partials  []PartialAverageEntry `json:"partials"`
}

// GradeService recomputes totals from source scores on every call. No cached
// running totals exist, so results always reflect the latest score,
// evaluation, or weight edit.
type GradeService struct {
	structures  structureReader
	evaluations evaluationScopeReader
	scores      scoreReader
	periods     partialLister
	missing     string
	logger      *zap.Logger
}

// NewGradeService constructs the aggregation engine. missingPolicy is
// config.MissingScoreZero or config.MissingScoreExcluded.
func NewGradeService(structures structureReader, evaluations evaluationScopeReader, scores scoreReader, periods partialLister, missingPolicy string, logger *zap.Logger) *GradeService {
	if missingPolicy != config.MissingScoreExcluded {
		missingPolicy = config.MissingScoreZero
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		structures:  structures,
		evaluations: evaluations,
		scores:      scores,
		periods:     periods,
		missing:     missingPolicy,
		logger:      logger,
	}
}

// ComputePartialTotal aggregates one student's partial-term total under the
// active weight structure.
func (s *GradeService) ComputePartialTotal(ctx context.Context, studentID, classID, partialID string) (*PartialTotalResult, error) {
	structure, err := s.structures.Structure(ctx, classID, partialID)
	if err != nil {
		return nil, err
	}
	if len(structure.Categories) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoStructure, "")
	}
	if err := ValidateCategories(structure.Categories); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidStructure.Code, appErrors.ErrInvalidStructure.Status, appErrors.ErrInvalidStructure.Message)
	}

	evaluations, err := s.evaluations.ListByScope(ctx, classID, partialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluations")
	}
	known := make(map[string]bool, len(structure.Categories))
	for _, category := range structure.Categories {
		known[category.ID] = true
	}
	byCategory := make(map[string][]models.Evaluation, len(structure.Categories))
	evaluationIDs := make([]string, 0, len(evaluations))
	for _, evaluation := range evaluations {
		if evaluation.CategoryID == nil || *evaluation.CategoryID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "uncategorized evaluation "+evaluation.ID)
		}
		if !known[*evaluation.CategoryID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "evaluation "+evaluation.ID+" references a category outside the weight structure")
		}
		byCategory[*evaluation.CategoryID] = append(byCategory[*evaluation.CategoryID], evaluation)
		evaluationIDs = append(evaluationIDs, evaluation.ID)
	}

	scores, err := s.scores.MapForStudent(ctx, studentID, evaluationIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}

	result := &PartialTotalResult{
		StudentID: studentID,
		ClassID:   classID,
		PartialID: partialID,
		Breakdown: make([]CategoryBreakdown, 0, len(structure.Categories)),
	}

	// Categories without evaluations drop out of the denominator for this
	// student; the remaining weights are scaled back up to a full total.
	activeWeight := 0
	for _, category := range structure.Categories {
		if len(byCategory[category.ID]) > 0 {
			activeWeight += category.Weight
		}
	}

	weightedSum := 0.0
	for _, category := range structure.Categories {
		entry := CategoryBreakdown{
			CategoryID:  category.ID,
			Label:       category.Label,
			Weight:      category.Weight,
			Evaluations: len(byCategory[category.ID]),
		}
		if entry.Evaluations > 0 && activeWeight > 0 {
			raw, graded := s.categoryRaw(byCategory[category.ID], scores)
			entry.RawScore = raw
			entry.Graded = graded
			entry.Contribution = raw * float64(category.Weight) / float64(activeWeight)
			weightedSum += entry.Contribution
		}
		result.Breakdown = append(result.Breakdown, entry)
	}

	result.Total = roundHalfUp(clamp(weightedSum, 0, 100))
	return result, nil
}

// ComputePeriodAverage averages partial totals over every partial of the
// period that has at least one evaluation.
func (s *GradeService) ComputePeriodAverage(ctx context.Context, studentID, classID, periodID string) (*PeriodAverageResult, error) {
	partials, err := s.periods.ListPartials(ctx, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partials")
	}

	result := &PeriodAverageResult{StudentID: studentID, ClassID: classID, PeriodID: periodID}
	sum := 0.0
	for _, partial := range partials {
		count, err := s.evaluations.CountByScope(ctx, classID, partial.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count evaluations")
		}
		if count == 0 {
			continue
		}
		total, err := s.ComputePartialTotal(ctx, studentID, classID, partial.ID)
		if err != nil {
			return nil, err
		}
		result.Partials = append(result.Partials, PartialAverageEntry{PartialID: partial.ID, Name: partial.Name, Total: total.Total})
		sum += total.Total
	}
	if len(result.Partials) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoGradablePartials, "")
	}
	result.Average = roundHalfUp(sum / float64(len(result.Partials)))
	return result, nil
}

// categoryRaw computes the category mean on a 0-100 scale. Under the zero
// policy an ungraded evaluation counts as 0; under the excluded policy it is
// dropped from the mean, and a fully ungraded category scores 0.
func (s *GradeService) categoryRaw(evaluations []models.Evaluation, scores map[string]models.Score) (float64, int) {
	sum := 0.0
	counted := 0
	graded := 0
	for _, evaluation := range evaluations {
		score, ok := scores[evaluation.ID]
		if !ok {
			if s.missing == config.MissingScoreZero {
				counted++
			}
			continue
		}
		graded++
		counted++
		if evaluation.MaxScore > 0 {
			sum += score.Value / evaluation.MaxScore * 100
		}
	}
	if counted == 0 {
		return 0, graded
	}
	return sum / float64(counted), graded
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfUp rounds to two decimal places, half up, matching how report
// cards publish totals. Inputs are already clamped to [0, 100].
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
