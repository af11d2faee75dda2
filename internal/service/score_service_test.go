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

type scoreWriterStub struct {
	upserts []models.Score
	err     error
}

func (s *scoreWriterStub) Upsert(ctx context.Context, score *models.Score) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, *score)
	return nil
}

func (s *scoreWriterStub) BulkUpsert(ctx context.Context, scores []models.Score) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, scores...)
	return nil
}

type evaluationFinderStub struct {
	evaluation *models.Evaluation
}

func (s evaluationFinderStub) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	if s.evaluation == nil {
		return nil, sql.ErrNoRows
	}
	clone := *s.evaluation
	return &clone, nil
}

type scoreNotifierStub struct {
	events int
	count  int
}

func (n *scoreNotifierStub) ScoresRecorded(evaluationID string, count int) {
	n.events++
	n.count += count
}

func TestScoreServiceRecord(t *testing.T) {
	writer := &scoreWriterStub{}
	notifier := &scoreNotifierStub{}
	finder := evaluationFinderStub{evaluation: &models.Evaluation{ID: "ev-1", MaxScore: 100}}
	service := NewScoreService(writer, finder, notifier, validator.New(), nil)

	score, err := service.Record(context.Background(), "ev-1", RecordScoreRequest{StudentID: "stu-1", Value: 85})
	require.NoError(t, err)
	assert.Equal(t, 85.0, score.Value)
	assert.Len(t, writer.upserts, 1)
	assert.Equal(t, 1, notifier.events)
}

func TestScoreServiceRecordZeroIsValid(t *testing.T) {
	writer := &scoreWriterStub{}
	finder := evaluationFinderStub{evaluation: &models.Evaluation{ID: "ev-1", MaxScore: 100}}
	service := NewScoreService(writer, finder, nil, validator.New(), nil)

	score, err := service.Record(context.Background(), "ev-1", RecordScoreRequest{StudentID: "stu-1", Value: 0})
	require.NoError(t, err)
	assert.Zero(t, score.Value)
}

func TestScoreServiceRecordExceedsMaxScore(t *testing.T) {
	finder := evaluationFinderStub{evaluation: &models.Evaluation{ID: "ev-1", MaxScore: 20}}
	service := NewScoreService(&scoreWriterStub{}, finder, nil, validator.New(), nil)

	_, err := service.Record(context.Background(), "ev-1", RecordScoreRequest{StudentID: "stu-1", Value: 21})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScoreServiceRecordUnknownEvaluation(t *testing.T) {
	service := NewScoreService(&scoreWriterStub{}, evaluationFinderStub{}, nil, validator.New(), nil)

	_, err := service.Record(context.Background(), "ev-x", RecordScoreRequest{StudentID: "stu-1", Value: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScoreServiceBulkRecord(t *testing.T) {
	writer := &scoreWriterStub{}
	notifier := &scoreNotifierStub{}
	finder := evaluationFinderStub{evaluation: &models.Evaluation{ID: "ev-1", MaxScore: 100}}
	service := NewScoreService(writer, finder, notifier, validator.New(), nil)

	scores, err := service.BulkRecord(context.Background(), "ev-1", BulkRecordScoresRequest{Scores: []RecordScoreRequest{
		{StudentID: "stu-1", Value: 90},
		{StudentID: "stu-2", Value: 75},
	}})
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.Len(t, writer.upserts, 2)
	assert.Equal(t, 2, notifier.count)
}

func TestScoreServiceBulkRecordRejectsBeforeAnyWrite(t *testing.T) {
	writer := &scoreWriterStub{}
	finder := evaluationFinderStub{evaluation: &models.Evaluation{ID: "ev-1", MaxScore: 100}}
	service := NewScoreService(writer, finder, nil, validator.New(), nil)

	_, err := service.BulkRecord(context.Background(), "ev-1", BulkRecordScoresRequest{Scores: []RecordScoreRequest{
		{StudentID: "stu-1", Value: 90},
		{StudentID: "stu-2", Value: 101},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, writer.upserts)
}

func TestScoreServiceBulkRecordRejectsDuplicateStudent(t *testing.T) {
	finder := evaluationFinderStub{evaluation: &models.Evaluation{ID: "ev-1", MaxScore: 100}}
	service := NewScoreService(&scoreWriterStub{}, finder, nil, validator.New(), nil)

	_, err := service.BulkRecord(context.Background(), "ev-1", BulkRecordScoresRequest{Scores: []RecordScoreRequest{
		{StudentID: "stu-1", Value: 90},
		{StudentID: "stu-1", Value: 80},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
