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

// ClassHandler exposes class and roster endpoints.
type ClassHandler struct {
	classes *service.ClassService
	roster  *service.RosterService
}

// NewClassHandler constructs handler.
func NewClassHandler(classes *service.ClassService, roster *service.RosterService) *ClassHandler {
	return &ClassHandler{classes: classes, roster: roster}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param search query string false "Search by name or code"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	filter := models.ClassFilter{Search: c.Query("search"), Page: page, PageSize: pageSize}

	classes, total, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, models.NewPagination(page, pageSize, total))
}

// Get godoc
// @Summary Get a class
// @Tags Classes
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Roster godoc
// @Summary List the class's eligible students
// @Tags Classes
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/roster [get]
func (h *ClassHandler) Roster(c *gin.Context) {
	roster, err := h.roster.ResolveEligible(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}
