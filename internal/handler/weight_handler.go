package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/service"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/response"
)

// WeightHandler exposes weight structure endpoints.
type WeightHandler struct {
	weights *service.WeightStructureService
}

// NewWeightHandler constructs handler.
func NewWeightHandler(weights *service.WeightStructureService) *WeightHandler {
	return &WeightHandler{weights: weights}
}

// Structure godoc
// @Summary Get weight structure for a class and partial
// @Tags Weights
// @Produce json
// @Param classId path string true "Class ID"
// @Param partialId path string true "Partial ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/partials/{partialId}/weights [get]
func (h *WeightHandler) Structure(c *gin.Context) {
	structure, err := h.weights.Structure(c.Request.Context(), c.Param("classId"), c.Param("partialId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structure, nil)
}

// Validate godoc
// @Summary Validate the weight structure for a class and partial
// @Tags Weights
// @Produce json
// @Param classId path string true "Class ID"
// @Param partialId path string true "Partial ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/partials/{partialId}/weights/validate [get]
func (h *WeightHandler) Validate(c *gin.Context) {
	result, err := h.weights.Validate(c.Request.Context(), c.Param("classId"), c.Param("partialId"))
	if err != nil {
		if result != nil {
			// Invalid structures still return the diagnostic payload.
			appErr := appErrors.FromError(err)
			response.JSON(c, appErr.Status, result, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create a weight category
// @Tags Weights
// @Accept json
// @Produce json
// @Param payload body service.CreateWeightCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Router /weight-categories [post]
func (h *WeightHandler) Create(c *gin.Context) {
	var req service.CreateWeightCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category, err := h.weights.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update godoc
// @Summary Update a weight category
// @Tags Weights
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body service.UpdateWeightCategoryRequest true "Category payload"
// @Success 200 {object} response.Envelope
// @Router /weight-categories/{id} [put]
func (h *WeightHandler) Update(c *gin.Context) {
	var req service.UpdateWeightCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category, err := h.weights.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete a weight category
// @Tags Weights
// @Param id path string true "Category ID"
// @Success 204
// @Router /weight-categories/{id} [delete]
func (h *WeightHandler) Delete(c *gin.Context) {
	if err := h.weights.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
