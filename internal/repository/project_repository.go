package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academica-api/internal/models"
)

// ProjectRepository persists projects.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ListByClass returns the class's projects ordered by creation.
func (r *ProjectRepository) ListByClass(ctx context.Context, classID string) ([]models.Project, error) {
	const query = `SELECT id, class_id, name, due_date, status, random_assign, group_size, grouping_state, created_at, updated_at
        FROM projects WHERE class_id = $1 ORDER BY created_at`
	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, classID); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByID returns a single project.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	const query = `SELECT id, class_id, name, due_date, status, random_assign, group_size, grouping_state, created_at, updated_at
        FROM projects WHERE id = $1`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// Create inserts a project in the NO_GROUPING state.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = models.ProjectStatusOpen
	}
	if project.GroupingState == "" {
		project.GroupingState = models.GroupingStateNone
	}
	const query = `INSERT INTO projects (id, class_id, name, due_date, status, random_assign, group_size, grouping_state, created_at, updated_at)
        VALUES (:id, :class_id, :name, :due_date, :status, :random_assign, :group_size, :grouping_state, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update rewrites mutable project fields.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	const query = `UPDATE projects SET name = :name, due_date = :due_date, status = :status,
        random_assign = :random_assign, group_size = :group_size, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// SetGroupingState moves the project through the assignment state machine.
func (r *ProjectRepository) SetGroupingState(ctx context.Context, id string, state models.GroupingState) error {
	const query = `UPDATE projects SET grouping_state = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, state, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("set grouping state: %w", err)
	}
	return nil
}
