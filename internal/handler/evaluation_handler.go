package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/models"
	"github.com/noah-isme/academica-api/internal/service"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/response"
)

// EvaluationHandler exposes evaluation CRUD endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler constructs handler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// List godoc
// @Summary List evaluations
// @Tags Evaluations
// @Produce json
// @Param classId query string false "Filter by class"
// @Param partialId query string false "Filter by partial"
// @Param categoryId query string false "Filter by weight category"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *EvaluationHandler) List(c *gin.Context) {
	filter := models.EvaluationFilter{
		ClassID:    c.Query("classId"),
		PartialID:  c.Query("partialId"),
		CategoryID: c.Query("categoryId"),
		Status:     models.EvaluationStatus(c.Query("status")),
	}
	evaluations, err := h.evaluations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, nil)
}

// Get godoc
// @Summary Get evaluation
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	evaluation, err := h.evaluations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// Create godoc
// @Summary Create evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.CreateEvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	var req service.CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	evaluation, err := h.evaluations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// Update godoc
// @Summary Update evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param payload body service.UpdateEvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id} [put]
func (h *EvaluationHandler) Update(c *gin.Context) {
	var req service.UpdateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	evaluation, err := h.evaluations.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// Delete godoc
// @Summary Delete evaluation and its scores
// @Tags Evaluations
// @Param id path string true "Evaluation ID"
// @Success 204
// @Router /evaluations/{id} [delete]
func (h *EvaluationHandler) Delete(c *gin.Context) {
	if err := h.evaluations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
