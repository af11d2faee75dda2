package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/models"
	"github.com/noah-isme/academica-api/internal/service"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/response"
)

// PeriodHandler exposes period and partial endpoints.
type PeriodHandler struct {
	periods *service.PeriodService
}

// NewPeriodHandler constructs handler.
func NewPeriodHandler(periods *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// List godoc
// @Summary List periods
// @Tags Periods
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	filter := models.PeriodFilter{Search: c.Query("search"), Page: page, PageSize: pageSize}

	periods, total, err := h.periods.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, models.NewPagination(page, pageSize, total))
}

// Get godoc
// @Summary Get a period with its partials
// @Tags Periods
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [get]
func (h *PeriodHandler) Get(c *gin.Context) {
	period, err := h.periods.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Create godoc
// @Summary Create a period
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var req service.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// Update godoc
// @Summary Update a period
// @Tags Periods
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body service.UpdatePeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [put]
func (h *PeriodHandler) Update(c *gin.Context) {
	var req service.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// ListPartials godoc
// @Summary List a period's partials in grading order
// @Tags Periods
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /periods/{id}/partials [get]
func (h *PeriodHandler) ListPartials(c *gin.Context) {
	partials, err := h.periods.ListPartials(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, partials, nil)
}

// AddPartial godoc
// @Summary Add a partial to a period
// @Tags Periods
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body service.CreatePartialRequest true "Partial payload"
// @Success 201 {object} response.Envelope
// @Router /periods/{id}/partials [post]
func (h *PeriodHandler) AddPartial(c *gin.Context) {
	var req service.CreatePartialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	partial, err := h.periods.AddPartial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, partial)
}
