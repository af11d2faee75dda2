package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/service"
	"github.com/noah-isme/academica-api/pkg/response"
)

// GradeHandler exposes the aggregation endpoints.
type GradeHandler struct {
	grades  *service.GradeService
	metrics *service.MetricsService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService, metrics *service.MetricsService) *GradeHandler {
	return &GradeHandler{grades: grades, metrics: metrics}
}

func (h *GradeHandler) observe(op string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveAggregation(op, time.Since(start))
	}
}

// PartialTotal godoc
// @Summary Compute a student's partial-term total
// @Tags Grades
// @Produce json
// @Param studentId path string true "Student ID"
// @Param classId path string true "Class ID"
// @Param partialId path string true "Partial ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/classes/{classId}/partials/{partialId}/total [get]
func (h *GradeHandler) PartialTotal(c *gin.Context) {
	defer h.observe("partial_total", time.Now())
	result, err := h.grades.ComputePartialTotal(c.Request.Context(), c.Param("studentId"), c.Param("classId"), c.Param("partialId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PeriodAverage godoc
// @Summary Compute a student's period average
// @Tags Grades
// @Produce json
// @Param studentId path string true "Student ID"
// @Param classId path string true "Class ID"
// @Param periodId path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/classes/{classId}/periods/{periodId}/average [get]
func (h *GradeHandler) PeriodAverage(c *gin.Context) {
	defer h.observe("period_average", time.Now())
	result, err := h.grades.ComputePeriodAverage(c.Request.Context(), c.Param("studentId"), c.Param("classId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
