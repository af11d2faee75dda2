package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academica-api/internal/models"
)

// EvaluationRepository persists evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// List returns evaluations matching the filter.
func (r *EvaluationRepository) List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, error) {
	query := `SELECT id, class_id, section_id, partial_id, category_id, title, max_score, due_date, status, created_at, updated_at
        FROM evaluations WHERE 1=1`
	var args []interface{}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.PartialID != "" {
		query += fmt.Sprintf(" AND partial_id = $%d", len(args)+1)
		args = append(args, filter.PartialID)
	}
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", len(args)+1)
		args = append(args, filter.CategoryID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at"
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, args...); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// ListByScope returns every evaluation for a class+partial.
func (r *EvaluationRepository) ListByScope(ctx context.Context, classID, partialID string) ([]models.Evaluation, error) {
	return r.List(ctx, models.EvaluationFilter{ClassID: classID, PartialID: partialID})
}

// CountByScope counts evaluations for a class+partial.
func (r *EvaluationRepository) CountByScope(ctx context.Context, classID, partialID string) (int, error) {
	const query = `SELECT COUNT(*) FROM evaluations WHERE class_id = $1 AND partial_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, partialID); err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return count, nil
}

// FindByID returns a single evaluation.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	const query = `SELECT id, class_id, section_id, partial_id, category_id, title, max_score, due_date, status, created_at, updated_at
        FROM evaluations WHERE id = $1`
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// Create inserts an evaluation.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	evaluation.CreatedAt = now
	evaluation.UpdatedAt = now
	const query = `INSERT INTO evaluations (id, class_id, section_id, partial_id, category_id, title, max_score, due_date, status, created_at, updated_at)
        VALUES (:id, :class_id, :section_id, :partial_id, :category_id, :title, :max_score, :due_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// Update rewrites the mutable evaluation fields.
func (r *EvaluationRepository) Update(ctx context.Context, evaluation *models.Evaluation) error {
	evaluation.UpdatedAt = time.Now().UTC()
	const query = `UPDATE evaluations SET title = :title, category_id = :category_id, max_score = :max_score,
        due_date = :due_date, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	return nil
}

// DeleteCascade removes an evaluation and its scores in one transaction.
func (r *EvaluationRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM scores WHERE evaluation_id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete evaluation scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM evaluations WHERE id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete evaluation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit evaluation delete: %w", err)
	}
	return nil
}

// HasScores reports whether any score references the evaluation.
func (r *EvaluationRepository) HasScores(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM scores WHERE evaluation_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check evaluation scores: %w", err)
	}
	return exists, nil
}
