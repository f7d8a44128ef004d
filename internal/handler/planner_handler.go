package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/service"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/response"
)

// PlannerHandler exposes the planning run endpoint.
type PlannerHandler struct {
	service *service.PlannerService
}

// NewPlannerHandler constructs a planner handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Run godoc
// @Summary Rebuild the exam timetable
// @Description Runs the placement engine over all exam-eligible course sections and atomically replaces the stored timetable
// @Tags Planning
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /planning/run [post]
func (h *PlannerHandler) Run(c *gin.Context) {
	result, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
