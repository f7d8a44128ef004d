package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/service"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/response"
)

// AvailabilityHandler handles instructor blackout endpoints.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs an availability handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// instructorID resolves the target instructor. Teachers act on their
// own blackouts only; admins and department heads may target anyone.
func (h *AvailabilityHandler) instructorID(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}

	target := c.Param("id")
	if target == "" || target == "me" {
		return claims.UserID, nil
	}
	if claims.Role == models.RoleTeacher && target != claims.UserID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "teachers may only manage their own blackout days")
	}
	return target, nil
}

// Blackouts godoc
// @Summary List blackout weekdays for an instructor
// @Tags Availability
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/blackouts [get]
func (h *AvailabilityHandler) Blackouts(c *gin.Context) {
	instructorID, err := h.instructorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	blackouts, err := h.service.Blackouts(c.Request.Context(), instructorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blackouts, nil)
}

// ReplaceBlackouts godoc
// @Summary Replace blackout weekdays for an instructor
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body service.BlackoutRequest true "Blackout weekdays, 0=Monday"
// @Success 204 {object} response.Envelope
// @Router /instructors/{id}/blackouts [put]
func (h *AvailabilityHandler) ReplaceBlackouts(c *gin.Context) {
	instructorID, err := h.instructorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.BlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.service.ReplaceBlackouts(c.Request.Context(), instructorID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
