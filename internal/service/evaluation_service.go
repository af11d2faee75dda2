package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type evaluationRepo interface {
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, error)
	FindByID(ctx context.Context, id string) (*models.Evaluation, error)
	Create(ctx context.Context, evaluation *models.Evaluation) error
	Update(ctx context.Context, evaluation *models.Evaluation) error
	DeleteCascade(ctx context.Context, id string) error
	HasScores(ctx context.Context, id string) (bool, error)
}

type categoryFinder interface {
	FindByID(ctx context.Context, id string) (*models.WeightCategory, error)
}

// CreateEvaluationRequest is the payload for a new evaluation.
type CreateEvaluationRequest struct {
	ClassID    string     `json:"class_id" validate:"required"`
	SectionID  *string    `json:"section_id,omitempty"`
	PartialID  string     `json:"partial_id" validate:"required"`
	CategoryID string     `json:"category_id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	MaxScore   float64    `json:"max_score" validate:"omitempty,gt=0"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// UpdateEvaluationRequest carries evaluation edits. Nil fields are untouched.
type UpdateEvaluationRequest struct {
	Title      *string                  `json:"title,omitempty"`
	CategoryID *string                  `json:"category_id,omitempty"`
	MaxScore   *float64                 `json:"max_score,omitempty" validate:"omitempty,gt=0"`
	DueDate    *time.Time               `json:"due_date,omitempty"`
	Status     *models.EvaluationStatus `json:"status,omitempty"`
}

// EvaluationService manages the gradable items scores hang off.
type EvaluationService struct {
	evaluations evaluationRepo
	categories  categoryFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs the service.
func NewEvaluationService(evaluations evaluationRepo, categories categoryFinder, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{evaluations: evaluations, categories: categories, validator: validate, logger: logger}
}

// List returns evaluations matching the filter.
func (s *EvaluationService) List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, error) {
	evaluations, err := s.evaluations.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evaluations, nil
}

// Get returns one evaluation.
func (s *EvaluationService) Get(ctx context.Context, id string) (*models.Evaluation, error) {
	evaluation, err := s.evaluations.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}

// Create registers an evaluation under a weight category. The category must
// belong to the same class and partial so totals stay attributable.
func (s *EvaluationService) Create(ctx context.Context, req CreateEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weight category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight category")
	}
	if category.ClassID != req.ClassID || category.PartialID != req.PartialID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "category belongs to a different class or partial")
	}

	maxScore := req.MaxScore
	if maxScore == 0 {
		maxScore = 100
	}
	categoryID := req.CategoryID
	evaluation := &models.Evaluation{
		ClassID:    req.ClassID,
		SectionID:  req.SectionID,
		PartialID:  req.PartialID,
		CategoryID: &categoryID,
		Title:      req.Title,
		MaxScore:   maxScore,
		DueDate:    req.DueDate,
		Status:     models.EvaluationStatusPending,
	}
	if err := s.evaluations.Create(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}
	return evaluation, nil
}

// Update applies partial edits. Lowering max_score under recorded scores is
// rejected so existing values never exceed the ceiling.
func (s *EvaluationService) Update(ctx context.Context, id string, req UpdateEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	evaluation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && !models.ValidEvaluationStatus(*req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown evaluation status")
	}
	if req.MaxScore != nil && *req.MaxScore < evaluation.MaxScore {
		graded, err := s.evaluations.HasScores(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check evaluation usage")
		}
		if graded {
			return nil, appErrors.Clone(appErrors.ErrConflict, "cannot lower max score: scores already recorded")
		}
	}
	if req.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *req.CategoryID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "weight category not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight category")
		}
		if category.ClassID != evaluation.ClassID || category.PartialID != evaluation.PartialID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category belongs to a different class or partial")
		}
		evaluation.CategoryID = req.CategoryID
	}
	if req.Title != nil {
		evaluation.Title = *req.Title
	}
	if req.MaxScore != nil {
		evaluation.MaxScore = *req.MaxScore
	}
	if req.DueDate != nil {
		evaluation.DueDate = req.DueDate
	}
	if req.Status != nil {
		evaluation.Status = *req.Status
	}
	if err := s.evaluations.Update(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation")
	}
	return evaluation, nil
}

// Delete removes an evaluation together with its scores.
func (s *EvaluationService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.evaluations.DeleteCascade(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluation")
	}
	s.logger.Sugar().Infow("evaluation deleted", "evaluation_id", id)
	return nil
}
