package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/service"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/response"
)

// ScheduleHandler serves the published exam timetable.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	exports   *service.ExportService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedules *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

// Timetable godoc
// @Summary Get the exam timetable for the current viewer
// @Description Admins and department heads see the full timetable, teachers see their own exams, students see exams for their enrolled courses
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /exams [get]
func (h *ScheduleHandler) Timetable(c *gin.Context) {
	exams, err := h.schedules.Timetable(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Export godoc
// @Summary Download the exam timetable
// @Description Streams the viewer-scoped timetable as a CSV or PDF attachment
// @Tags Exams
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exams/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Export(c.Request.Context(), claimsFromContext(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
