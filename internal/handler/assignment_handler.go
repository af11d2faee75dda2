package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/service"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/response"
)

// AssignmentHandler exposes the group draw endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	metrics     *service.MetricsService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignments *service.AssignmentService, metrics *service.MetricsService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, metrics: metrics}
}

func (h *AssignmentHandler) countDraw(outcome string) {
	if h.metrics != nil {
		h.metrics.CountDraw(outcome)
	}
}

type drawPayload struct {
	GroupSize int    `json:"group_size"`
	Seed      *int64 `json:"seed,omitempty"`
}

// Capacity godoc
// @Summary Check whether the class roster supports a group size
// @Tags Assignments
// @Produce json
// @Param classId path string true "Class ID"
// @Param groupSize query int true "Requested group size"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/draw-capacity [get]
func (h *AssignmentHandler) Capacity(c *gin.Context) {
	groupSize, err := strconv.Atoi(c.Query("groupSize"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "groupSize must be an integer"))
		return
	}
	result, err := h.assignments.ValidateCapacity(c.Request.Context(), c.Param("classId"), groupSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Draw godoc
// @Summary Randomly draw project groups from the class roster
// @Tags Assignments
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param projectId path string true "Project ID"
// @Param payload body drawPayload true "Draw payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/projects/{projectId}/draw [post]
func (h *AssignmentHandler) Draw(c *gin.Context) {
	var payload drawPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	groups, err := h.assignments.DrawGroups(c.Request.Context(), service.DrawGroupsRequest{
		ClassID:   c.Param("classId"),
		ProjectID: c.Param("projectId"),
		GroupSize: payload.GroupSize,
		Seed:      payload.Seed,
	})
	if err != nil {
		if appErrors.Is(err, appErrors.ErrDrawInProgress) {
			h.countDraw("conflict")
		} else {
			h.countDraw("error")
		}
		response.Error(c, err)
		return
	}
	h.countDraw("ok")
	response.JSON(c, http.StatusOK, groups, nil)
}

// AssignManually godoc
// @Summary Replace a group's membership
// @Tags Assignments
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param payload body service.AssignManuallyRequest true "Members payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{groupId}/members [put]
func (h *AssignmentHandler) AssignManually(c *gin.Context) {
	var req service.AssignManuallyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.assignments.AssignManually(c.Request.Context(), c.Param("groupId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}
