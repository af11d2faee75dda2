package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academica-api/internal/models"
)

// WeightRepository persists weight categories.
type WeightRepository struct {
	db *sqlx.DB
}

// NewWeightRepository creates a new weight repository.
func NewWeightRepository(db *sqlx.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// ListByScope returns all categories for a class+partial ordered by label.
func (r *WeightRepository) ListByScope(ctx context.Context, classID, partialID string) ([]models.WeightCategory, error) {
	const query = `SELECT id, class_id, partial_id, label, weight, created_at, updated_at
        FROM weight_categories WHERE class_id = $1 AND partial_id = $2 ORDER BY label`
	var categories []models.WeightCategory
	if err := r.db.SelectContext(ctx, &categories, query, classID, partialID); err != nil {
		return nil, fmt.Errorf("list weight categories: %w", err)
	}
	return categories, nil
}

// FindByID returns a single category.
func (r *WeightRepository) FindByID(ctx context.Context, id string) (*models.WeightCategory, error) {
	const query = `SELECT id, class_id, partial_id, label, weight, created_at, updated_at
        FROM weight_categories WHERE id = $1`
	var category models.WeightCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a category.
func (r *WeightRepository) Create(ctx context.Context, category *models.WeightCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	const query = `INSERT INTO weight_categories (id, class_id, partial_id, label, weight, created_at, updated_at)
        VALUES (:id, :class_id, :partial_id, :label, :weight, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create weight category: %w", err)
	}
	return nil
}

// Update rewrites label and weight for a category.
func (r *WeightRepository) Update(ctx context.Context, category *models.WeightCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE weight_categories SET label = :label, weight = :weight, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update weight category: %w", err)
	}
	return nil
}

// Delete removes a category.
func (r *WeightRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM weight_categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete weight category: %w", err)
	}
	return nil
}

// HasScores reports whether any score references an evaluation in the
// category, which freezes the category against breaking edits.
func (r *WeightRepository) HasScores(ctx context.Context, categoryID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM scores s JOIN evaluations e ON e.id = s.evaluation_id WHERE e.category_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, categoryID); err != nil {
		return false, fmt.Errorf("check category scores: %w", err)
	}
	return exists, nil
}
