package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academica-api/internal/models"
)

// PeriodRepository persists periods and partials.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns periods matching the filter with paging.
func (r *PeriodRepository) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	base := "FROM periods"
	var conditions []string
	var args []interface{}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, start_date, end_date, created_at, updated_at %s ORDER BY start_date DESC LIMIT %d OFFSET %d`,
		base+clause, size, offset)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list periods: %w", err)
	}
	return periods, total, nil
}

// FindByID returns a period with its partials.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	const query = `SELECT id, name, start_date, end_date, created_at, updated_at FROM periods WHERE id = $1`
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	partials, err := r.ListPartials(ctx, id)
	if err != nil {
		return nil, err
	}
	period.Partials = partials
	return &period, nil
}

// Create inserts a period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	const query = `INSERT INTO periods (id, name, start_date, end_date, created_at, updated_at)
        VALUES (:id, :name, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// Update rewrites the period fields.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE periods SET name = :name, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

// ListPartials returns the period's partials ordered by ordinal.
func (r *PeriodRepository) ListPartials(ctx context.Context, periodID string) ([]models.Partial, error) {
	const query = `SELECT id, period_id, ordinal, name, created_at FROM partials WHERE period_id = $1 ORDER BY ordinal`
	var partials []models.Partial
	if err := r.db.SelectContext(ctx, &partials, query, periodID); err != nil {
		return nil, fmt.Errorf("list partials: %w", err)
	}
	return partials, nil
}

// CreatePartial appends a partial to a period.
func (r *PeriodRepository) CreatePartial(ctx context.Context, partial *models.Partial) error {
	if partial.ID == "" {
		partial.ID = uuid.NewString()
	}
	partial.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO partials (id, period_id, ordinal, name, created_at)
        VALUES (:id, :period_id, :ordinal, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, partial); err != nil {
		return fmt.Errorf("create partial: %w", err)
	}
	return nil
}

// OrdinalExists reports whether the period already has a partial with ordinal.
func (r *PeriodRepository) OrdinalExists(ctx context.Context, periodID string, ordinal int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM partials WHERE period_id = $1 AND ordinal = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, periodID, ordinal); err != nil {
		return false, fmt.Errorf("check partial ordinal: %w", err)
	}
	return exists, nil
}
