package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type periodRepo interface {
	List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error)
	FindByID(ctx context.Context, id string) (*models.Period, error)
	Create(ctx context.Context, period *models.Period) error
	Update(ctx context.Context, period *models.Period) error
	ListPartials(ctx context.Context, periodID string) ([]models.Partial, error)
	CreatePartial(ctx context.Context, partial *models.Partial) error
	OrdinalExists(ctx context.Context, periodID string, ordinal int) (bool, error)
}

// CreatePeriodRequest is the payload for a new academic period.
type CreatePeriodRequest struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// UpdatePeriodRequest carries period edits.
type UpdatePeriodRequest struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// CreatePartialRequest appends a partial to a period.
type CreatePartialRequest struct {
	Ordinal int    `json:"ordinal" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required"`
}

// PeriodService manages periods and their ordered partials.
type PeriodService struct {
	periods   periodRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs the service.
func NewPeriodService(periods periodRepo, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{periods: periods, validator: validate, logger: logger}
}

// List returns periods with paging metadata.
func (s *PeriodService) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	periods, total, err := s.periods.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	return periods, total, nil
}

// Get returns a period with its partials.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.Period, error) {
	period, err := s.periods.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	return period, nil
}

// Create registers a period. The start date must precede the end date.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be before end date")
	}
	period := &models.Period{Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.periods.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}
	return period, nil
}

// Update rewrites a period's fields.
func (s *PeriodService) Update(ctx context.Context, id string, req UpdatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be before end date")
	}
	period, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	period.Name = req.Name
	period.StartDate = req.StartDate
	period.EndDate = req.EndDate
	if err := s.periods.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}
	return period, nil
}

// AddPartial appends a partial. Ordinals are unique within the period.
func (s *PeriodService) AddPartial(ctx context.Context, periodID string, req CreatePartialRequest) (*models.Partial, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid partial payload")
	}
	if _, err := s.Get(ctx, periodID); err != nil {
		return nil, err
	}
	exists, err := s.periods.OrdinalExists(ctx, periodID, req.Ordinal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check partial ordinal")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("period already has a partial with ordinal %d", req.Ordinal))
	}
	partial := &models.Partial{PeriodID: periodID, Ordinal: req.Ordinal, Name: req.Name}
	if err := s.periods.CreatePartial(ctx, partial); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create partial")
	}
	return partial, nil
}

// ListPartials returns the period's partials in grading order.
func (s *PeriodService) ListPartials(ctx context.Context, periodID string) ([]models.Partial, error) {
	if _, err := s.Get(ctx, periodID); err != nil {
		return nil, err
	}
	partials, err := s.periods.ListPartials(ctx, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list partials")
	}
	return partials, nil
}
