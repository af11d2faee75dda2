package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type classRepo interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
}

// CreateClassRequest is the payload for a new class.
type CreateClassRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Credits  int    `json:"credits" validate:"gte=0"`
	WeekDays string `json:"week_days"`
}

// ClassService manages the classes that scope the engines.
type ClassService struct {
	classes   classRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the service.
func NewClassService(classes classRepo, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, validator: validate, logger: logger}
}

// List returns classes with paging metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	classes, total, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, total, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create registers a class.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class := &models.Class{
		Code:     req.Code,
		Name:     req.Name,
		Credits:  req.Credits,
		WeekDays: req.WeekDays,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}
