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

// ScoreRepository persists per-student evaluation scores.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert inserts or overwrites the score for (evaluation, student).
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now
	const query = `INSERT INTO scores (id, evaluation_id, student_id, value, created_at, updated_at)
        VALUES (:id, :evaluation_id, :student_id, :value, :created_at, :updated_at)
        ON CONFLICT (evaluation_id, student_id)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert writes multiple scores in a single transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, scores []models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO scores (id, evaluation_id, student_id, value, created_at, updated_at)
        VALUES (:id, :evaluation_id, :student_id, :value, :created_at, :updated_at)
        ON CONFLICT (evaluation_id, student_id)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		scores[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, scores[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scores: %w", err)
	}
	return nil
}

// MapForStudent returns the student's scores keyed by evaluation ID.
func (r *ScoreRepository) MapForStudent(ctx context.Context, studentID string, evaluationIDs []string) (map[string]models.Score, error) {
	result := make(map[string]models.Score, len(evaluationIDs))
	if len(evaluationIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(evaluationIDs))
	args := make([]interface{}, len(evaluationIDs)+1)
	args[0] = studentID
	for i, id := range evaluationIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = id
	}
	query := fmt.Sprintf(`SELECT id, evaluation_id, student_id, value, created_at, updated_at
        FROM scores WHERE student_id = $1 AND evaluation_id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var score models.Score
		if err := rows.StructScan(&score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		result[score.EvaluationID] = score
	}
	return result, nil
}

// MapForEvaluations returns all scores for the evaluations keyed by
// (evaluation, student), used when building class grade sheets.
func (r *ScoreRepository) MapForEvaluations(ctx context.Context, evaluationIDs []string) (map[string]map[string]models.Score, error) {
	result := make(map[string]map[string]models.Score, len(evaluationIDs))
	if len(evaluationIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(evaluationIDs))
	args := make([]interface{}, len(evaluationIDs))
	for i, id := range evaluationIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, evaluation_id, student_id, value, created_at, updated_at
        FROM scores WHERE evaluation_id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch evaluation scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var score models.Score
		if err := rows.StructScan(&score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		byStudent := result[score.EvaluationID]
		if byStudent == nil {
			byStudent = make(map[string]models.Score)
			result[score.EvaluationID] = byStudent
		}
		byStudent[score.StudentID] = score
	}
	return result, nil
}
