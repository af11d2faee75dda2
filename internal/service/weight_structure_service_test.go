package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type weightRepoStub struct {
	categories []models.WeightCategory
	hasScores  bool
	err        error
}

func (s *weightRepoStub) ListByScope(ctx context.Context, classID, partialID string) ([]models.WeightCategory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *weightRepoStub) FindByID(ctx context.Context, id string) (*models.WeightCategory, error) {
	for _, category := range s.categories {
		if category.ID == id {
			clone := category
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *weightRepoStub) Create(ctx context.Context, category *models.WeightCategory) error {
	if s.err != nil {
		return s.err
	}
	s.categories = append(s.categories, *category)
	return nil
}

func (s *weightRepoStub) Update(ctx context.Context, category *models.WeightCategory) error {
	for i := range s.categories {
		if s.categories[i].ID == category.ID {
			s.categories[i] = *category
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *weightRepoStub) Delete(ctx context.Context, id string) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *weightRepoStub) HasScores(ctx context.Context, categoryID string) (bool, error) {
	return s.hasScores, nil
}

func TestValidateCategoriesAccepts100(t *testing.T) {
	err := ValidateCategories([]models.WeightCategory{
		{Label: "Tasks", Weight: 40},
		{Label: "Exams", Weight: 60},
	})
	require.NoError(t, err)
}

func TestValidateCategoriesEmpty(t *testing.T) {
	err := ValidateCategories(nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyStructure.Code, appErrors.FromError(err).Code)
}

func TestValidateCategoriesDuplicateLabelCaseInsensitive(t *testing.T) {
	err := ValidateCategories([]models.WeightCategory{
		{Label: "Tasks", Weight: 40},
		{Label: "tasks", Weight: 60},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCategory.Code, appErrors.FromError(err).Code)
}

func TestValidateCategoriesIncompleteSum(t *testing.T) {
	for _, total := range []int{99, 101} {
		err := ValidateCategories([]models.WeightCategory{
			{Label: "Tasks", Weight: 40},
			{Label: "Exams", Weight: total - 40},
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrIncompleteStructure.Code, appErrors.FromError(err).Code)
	}
}

func TestWeightStructureServiceValidateReportsTotal(t *testing.T) {
	repo := &weightRepoStub{categories: []models.WeightCategory{
		{ID: "c1", Label: "Tasks", Weight: 40},
		{ID: "c2", Label: "Exams", Weight: 50},
	}}
	service := NewWeightStructureService(repo, validator.New(), nil)

	result, err := service.Validate(context.Background(), "class-1", "p1")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.Equal(t, 90, result.Total)
	assert.Equal(t, appErrors.ErrIncompleteStructure.Code, result.Reason)
}

func TestWeightStructureServiceCreateRejectsDuplicateLabel(t *testing.T) {
	repo := &weightRepoStub{categories: []models.WeightCategory{
		{ID: "c1", ClassID: "class-1", PartialID: "p1", Label: "Tasks", Weight: 40},
	}}
	service := NewWeightStructureService(repo, validator.New(), nil)

	_, err := service.Create(context.Background(), CreateWeightCategoryRequest{
		ClassID: "class-1", PartialID: "p1", Label: " tasks ", Weight: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCategory.Code, appErrors.FromError(err).Code)
}

func TestWeightStructureServiceCreate(t *testing.T) {
	repo := &weightRepoStub{}
	service := NewWeightStructureService(repo, validator.New(), nil)

	category, err := service.Create(context.Background(), CreateWeightCategoryRequest{
		ClassID: "class-1", PartialID: "p1", Label: "Tasks", Weight: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tasks", category.Label)
	assert.Len(t, repo.categories, 1)
}

func TestWeightStructureServiceUpdateFreezesWeightUnderScores(t *testing.T) {
	repo := &weightRepoStub{
		categories: []models.WeightCategory{{ID: "c1", ClassID: "class-1", PartialID: "p1", Label: "Tasks", Weight: 40}},
		hasScores:  true,
	}
	service := NewWeightStructureService(repo, validator.New(), nil)

	_, err := service.Update(context.Background(), "c1", UpdateWeightCategoryRequest{Label: "Tasks", Weight: 50})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWeightStructureServiceUpdateAllowsLabelEditUnderScores(t *testing.T) {
	repo := &weightRepoStub{
		categories: []models.WeightCategory{{ID: "c1", ClassID: "class-1", PartialID: "p1", Label: "Tasks", Weight: 40}},
		hasScores:  true,
	}
	service := NewWeightStructureService(repo, validator.New(), nil)

	category, err := service.Update(context.Background(), "c1", UpdateWeightCategoryRequest{Label: "Homework", Weight: 40})
	require.NoError(t, err)
	assert.Equal(t, "Homework", category.Label)
}

func TestWeightStructureServiceDeleteBlockedByScores(t *testing.T) {
	repo := &weightRepoStub{
		categories: []models.WeightCategory{{ID: "c1", ClassID: "class-1", PartialID: "p1", Label: "Tasks", Weight: 40}},
		hasScores:  true,
	}
	service := NewWeightStructureService(repo, validator.New(), nil)

	err := service.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWeightStructureServiceDelete(t *testing.T) {
	repo := &weightRepoStub{
		categories: []models.WeightCategory{{ID: "c1", ClassID: "class-1", PartialID: "p1", Label: "Tasks", Weight: 40}},
	}
	service := NewWeightStructureService(repo, validator.New(), nil)

	require.NoError(t, service.Delete(context.Background(), "c1"))
	assert.Empty(t, repo.categories)
}
