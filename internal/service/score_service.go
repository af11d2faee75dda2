package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type scoreWriter interface {
	Upsert(ctx context.Context, score *models.Score) error
	BulkUpsert(ctx context.Context, scores []models.Score) error
}

type evaluationFinder interface {
	FindByID(ctx context.Context, id string) (*models.Evaluation, error)
}

type scoreNotifier interface {
	ScoresRecorded(evaluationID string, count int)
}

// RecordScoreRequest grades one student on one evaluation.
type RecordScoreRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Value     float64 `json:"value" validate:"gte=0"`
}

// BulkRecordScoresRequest grades a batch of students on one evaluation.
type BulkRecordScoresRequest struct {
	Scores []RecordScoreRequest `json:"scores" validate:"required,min=1,dive"`
}

// ScoreService records scores, enforcing the evaluation's score ceiling.
type ScoreService struct {
	scores      scoreWriter
	evaluations evaluationFinder
	notifier    scoreNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreService constructs the service.
func NewScoreService(scores scoreWriter, evaluations evaluationFinder, notifier scoreNotifier, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{scores: scores, evaluations: evaluations, notifier: notifier, validator: validate, logger: logger}
}

// Record upserts a single score. Re-grading overwrites the previous value.
func (s *ScoreService) Record(ctx context.Context, evaluationID string, req RecordScoreRequest) (*models.Score, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	evaluation, err := s.loadEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if req.Value > evaluation.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("score %.2f exceeds max score %.2f", req.Value, evaluation.MaxScore))
	}
	score := &models.Score{
		EvaluationID: evaluationID,
		StudentID:    req.StudentID,
		Value:        req.Value,
	}
	if err := s.scores.Upsert(ctx, score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record score")
	}
	if s.notifier != nil {
		s.notifier.ScoresRecorded(evaluationID, 1)
	}
	return score, nil
}

// BulkRecord upserts a batch atomically. The whole batch is validated before
// any write, so either every score lands or none does.
func (s *ScoreService) BulkRecord(ctx context.Context, evaluationID string, req BulkRecordScoresRequest) ([]models.Score, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scores payload")
	}
	evaluation, err := s.loadEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(req.Scores))
	scores := make([]models.Score, 0, len(req.Scores))
	for _, entry := range req.Scores {
		if _, ok := seen[entry.StudentID]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s listed twice", entry.StudentID))
		}
		seen[entry.StudentID] = struct{}{}
		if entry.Value > evaluation.MaxScore {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("score %.2f for student %s exceeds max score %.2f", entry.Value, entry.StudentID, evaluation.MaxScore))
		}
		scores = append(scores, models.Score{
			EvaluationID: evaluationID,
			StudentID:    entry.StudentID,
			Value:        entry.Value,
		})
	}
	if err := s.scores.BulkUpsert(ctx, scores); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record scores")
	}
	if s.notifier != nil {
		s.notifier.ScoresRecorded(evaluationID, len(scores))
	}
	s.logger.Sugar().Infow("scores recorded", "evaluation_id", evaluationID, "count", len(scores))
	return scores, nil
}

func (s *ScoreService) loadEvaluation(ctx context.Context, id string) (*models.Evaluation, error) {
	evaluation, err := s.evaluations.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}
