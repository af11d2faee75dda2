package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academica-api/internal/service"
	"github.com/noah-isme/academica-api/pkg/response"
)

// ExportHandler streams rendered grade sheets and group rosters.
type ExportHandler struct {
	exports  *service.ExportService
	projects *service.ProjectService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService, projects *service.ProjectService) *ExportHandler {
	return &ExportHandler{exports: exports, projects: projects}
}

// GradeSheet godoc
// @Summary Export the class grade sheet for a partial
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param classId path string true "Class ID"
// @Param partialId path string true "Partial ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /classes/{classId}/partials/{partialId}/grade-sheet [get]
func (h *ExportHandler) GradeSheet(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	file, err := h.exports.GradeSheet(c.Request.Context(), c.Param("classId"), c.Param("partialId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.FileName)
	c.Data(200, file.ContentType, file.Data)
}

// GroupRoster godoc
// @Summary Export a project's grouping
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param id path string true "Project ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /projects/{id}/groups/export [get]
func (h *ExportHandler) GroupRoster(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	groups, err := h.projects.Groups(c.Request.Context(), project.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.GroupRoster(c.Request.Context(), project, groups, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.FileName)
	c.Data(200, file.ContentType, file.Data)
}
