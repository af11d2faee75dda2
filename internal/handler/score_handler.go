package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/service"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/response"
)

// ScoreHandler exposes score recording endpoints.
type ScoreHandler struct {
	scores *service.ScoreService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(scores *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

type recordScorePayload struct {
	EvaluationID string  `json:"evaluation_id" binding:"required"`
	StudentID    string  `json:"student_id" binding:"required"`
	Value        float64 `json:"value"`
}

type bulkRecordScoresPayload struct {
	EvaluationID string                       `json:"evaluation_id" binding:"required"`
	Scores       []service.RecordScoreRequest `json:"scores" binding:"required"`
}

// Record godoc
// @Summary Record or overwrite a single score
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body recordScorePayload true "Score payload"
// @Success 201 {object} response.Envelope
// @Router /scores [post]
func (h *ScoreHandler) Record(c *gin.Context) {
	var payload recordScorePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	score, err := h.scores.Record(c.Request.Context(), payload.EvaluationID, service.RecordScoreRequest{
		StudentID: payload.StudentID,
		Value:     payload.Value,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, score)
}

// BulkRecord godoc
// @Summary Record a batch of scores atomically
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body bulkRecordScoresPayload true "Scores payload"
// @Success 201 {object} response.Envelope
// @Router /scores/bulk [post]
func (h *ScoreHandler) BulkRecord(c *gin.Context) {
	var payload bulkRecordScoresPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scores, err := h.scores.BulkRecord(c.Request.Context(), payload.EvaluationID, service.BulkRecordScoresRequest{Scores: payload.Scores})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scores)
}
