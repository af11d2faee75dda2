package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type weightRepo interface {
	ListByScope(ctx context.Context, classID, partialID string) ([]models.WeightCategory, error)
	FindByID(ctx context.Context, id string) (*models.WeightCategory, error)
	Create(ctx context.Context, category *models.WeightCategory) error
	Update(ctx context.Context, category *models.WeightCategory) error
	Delete(ctx context.Context, id string) error
	HasScores(ctx context.Context, categoryID string) (bool, error)
}

// CreateWeightCategoryRequest is the payload for a new category.
type CreateWeightCategoryRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	PartialID string `json:"partial_id" validate:"required"`
	Label     string `json:"label" validate:"required"`
	Weight    int    `json:"weight" validate:"required,gt=0,lte=100"`
}

// UpdateWeightCategoryRequest is the payload for category edits.
type UpdateWeightCategoryRequest struct {
	Label  string `json:"label" validate:"required"`
	Weight int    `json:"weight" validate:"required,gt=0,lte=100"`
}

// WeightStructureService manages weight categories and validates structures.
type WeightStructureService struct {
	weights   weightRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeightStructureService constructs the service.
func NewWeightStructureService(weights weightRepo, validate *validator.Validate, logger *zap.Logger) *WeightStructureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightStructureService{weights: weights, validator: validate, logger: logger}
}

// Structure returns the weight structure for a class+partial.
func (s *WeightStructureService) Structure(ctx context.Context, classID, partialID string) (*models.WeightStructure, error) {
	categories, err := s.weights.ListByScope(ctx, classID, partialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight structure")
	}
	return &models.WeightStructure{ClassID: classID, PartialID: partialID, Categories: categories}, nil
}

// Validate loads and checks the structure for a class+partial. Called both
// on admin save and lazily before every aggregation so a structure cannot
// drift out of validity unnoticed.
func (s *WeightStructureService) Validate(ctx context.Context, classID, partialID string) (*models.StructureValidation, error) {
	structure, err := s.Structure(ctx, classID, partialID)
	if err != nil {
		return nil, err
	}
	result := models.StructureValidation{
		ClassID:   classID,
		PartialID: partialID,
		Total:     structure.TotalWeight(),
	}
	if err := ValidateCategories(structure.Categories); err != nil {
		result.Valid = false
		result.Reason = appErrors.FromError(err).Code
		return &result, err
	}
	result.Valid = true
	return &result, nil
}

// ValidateCategories is the pure structural check: non-empty, unique labels,
// weights summing to exactly 100.
func ValidateCategories(categories []models.WeightCategory) error {
	if len(categories) == 0 {
		return appErrors.Clone(appErrors.ErrEmptyStructure, "")
	}
	seen := make(map[string]struct{}, len(categories))
	total := 0
	for _, category := range categories {
		label := strings.ToLower(strings.TrimSpace(category.Label))
		if _, ok := seen[label]; ok {
			return appErrors.Clone(appErrors.ErrDuplicateCategory, fmt.Sprintf("duplicate category label %q", category.Label))
		}
		seen[label] = struct{}{}
		total += category.Weight
	}
	if total != 100 {
		return appErrors.Clone(appErrors.ErrIncompleteStructure, fmt.Sprintf("weights sum to %d, want 100", total))
	}
	return nil
}

// Create adds a category. The new label must not collide within its scope;
// the sum check is deferred to Validate since structures are built up
// category by category.
func (s *WeightStructureService) Create(ctx context.Context, req CreateWeightCategoryRequest) (*models.WeightCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weight category payload")
	}
	existing, err := s.weights.ListByScope(ctx, req.ClassID, req.PartialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight structure")
	}
	for _, category := range existing {
		if strings.EqualFold(strings.TrimSpace(category.Label), strings.TrimSpace(req.Label)) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCategory, fmt.Sprintf("category %q already exists", req.Label))
		}
	}
	category := &models.WeightCategory{
		ClassID:   req.ClassID,
		PartialID: req.PartialID,
		Label:     strings.TrimSpace(req.Label),
		Weight:    req.Weight,
	}
	if err := s.weights.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create weight category")
	}
	return category, nil
}

// Update edits a category. Weight changes are blocked once scores reference
// the category's evaluations; label edits stay allowed.
func (s *WeightStructureService) Update(ctx context.Context, id string, req UpdateWeightCategoryRequest) (*models.WeightCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weight category payload")
	}
	category, err := s.weights.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weight category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight category")
	}
	if req.Weight != category.Weight {
		frozen, err := s.weights.HasScores(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category usage")
		}
		if frozen {
			return nil, appErrors.Clone(appErrors.ErrConflict, "category weight locked: scores already recorded")
		}
	}
	siblings, err := s.weights.ListByScope(ctx, category.ClassID, category.PartialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight structure")
	}
	for _, sibling := range siblings {
		if sibling.ID != id && strings.EqualFold(strings.TrimSpace(sibling.Label), strings.TrimSpace(req.Label)) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCategory, fmt.Sprintf("category %q already exists", req.Label))
		}
	}
	category.Label = strings.TrimSpace(req.Label)
	category.Weight = req.Weight
	if err := s.weights.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update weight category")
	}
	return category, nil
}

// Delete removes a category unless scores already reference it.
func (s *WeightStructureService) Delete(ctx context.Context, id string) error {
	if _, err := s.weights.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "weight category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight category")
	}
	frozen, err := s.weights.HasScores(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category usage")
	}
	if frozen {
		return appErrors.Clone(appErrors.ErrConflict, "category locked: scores already recorded")
	}
	if err := s.weights.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete weight category")
	}
	return nil
}
