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

type projectWriter interface {
	ListByClass(ctx context.Context, classID string) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
}

type groupLister interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Group, error)
}

// CreateProjectRequest is the payload for a new class project.
type CreateProjectRequest struct {
	ClassID      string     `json:"class_id" validate:"required"`
	Name         string     `json:"name" validate:"required"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	RandomAssign bool       `json:"random_assign"`
	GroupSize    int        `json:"group_size" validate:"required,gt=0"`
}

// UpdateProjectRequest carries project edits. Nil fields are untouched.
type UpdateProjectRequest struct {
	Name      *string               `json:"name,omitempty"`
	DueDate   *time.Time            `json:"due_date,omitempty"`
	Status    *models.ProjectStatus `json:"status,omitempty"`
	GroupSize *int                  `json:"group_size,omitempty" validate:"omitempty,gt=0"`
}

// ProjectService manages class projects and exposes their groupings.
type ProjectService struct {
	projects  projectWriter
	groups    groupLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProjectService constructs the service.
func NewProjectService(projects projectWriter, groups groupLister, validate *validator.Validate, logger *zap.Logger) *ProjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{projects: projects, groups: groups, validator: validate, logger: logger}
}

// ListByClass returns the class's projects.
func (s *ProjectService) ListByClass(ctx context.Context, classID string) ([]models.Project, error) {
	projects, err := s.projects.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	return projects, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

// Create registers a project in the NO_GROUPING state.
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	project := &models.Project{
		ClassID:      req.ClassID,
		Name:         req.Name,
		DueDate:      req.DueDate,
		RandomAssign: req.RandomAssign,
		GroupSize:    req.GroupSize,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}
	return project, nil
}

// Update applies partial project edits. Changing group size does not touch an
// existing grouping; a re-draw applies the new size.
func (s *ProjectService) Update(ctx context.Context, id string, req UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != models.ProjectStatusOpen && *req.Status != models.ProjectStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown project status")
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.DueDate != nil {
		project.DueDate = req.DueDate
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.GroupSize != nil {
		project.GroupSize = *req.GroupSize
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}
	return project, nil
}

// Groups returns the project's current grouping, ordered by group number.
func (s *ProjectService) Groups(ctx context.Context, projectID string) ([]models.Group, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	groups, err := s.groups.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}
