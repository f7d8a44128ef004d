package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/service"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/response"
)

// FacultyHandler handles faculty and department endpoints.
type FacultyHandler struct {
	service *service.FacultyService
}

// NewFacultyHandler constructs a faculty handler.
func NewFacultyHandler(svc *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// ListFaculties godoc
// @Summary List faculties
// @Tags Faculties
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculties [get]
func (h *FacultyHandler) ListFaculties(c *gin.Context) {
	faculties, err := h.service.ListFaculties(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculties, nil)
}

// GetFaculty godoc
// @Summary Get faculty by id
// @Tags Faculties
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculties/{id} [get]
func (h *FacultyHandler) GetFaculty(c *gin.Context) {
	faculty, err := h.service.GetFaculty(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// CreateFaculty godoc
// @Summary Create faculty
// @Tags Faculties
// @Accept json
// @Produce json
// @Param payload body service.FacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Router /faculties [post]
func (h *FacultyHandler) CreateFaculty(c *gin.Context) {
	var req service.FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	faculty, err := h.service.CreateFaculty(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// UpdateFaculty godoc
// @Summary Update faculty
// @Tags Faculties
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body service.FacultyRequest true "Faculty payload"
// @Success 200 {object} response.Envelope
// @Router /faculties/{id} [put]
func (h *FacultyHandler) UpdateFaculty(c *gin.Context) {
	var req service.FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	faculty, err := h.service.UpdateFaculty(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// DeleteFaculty godoc
// @Summary Delete faculty
// @Tags Faculties
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 204 {object} response.Envelope
// @Router /faculties/{id} [delete]
func (h *FacultyHandler) DeleteFaculty(c *gin.Context) {
	if err := h.service.DeleteFaculty(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Param faculty_id query string false "Filter by faculty"
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *FacultyHandler) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context(), c.Query("faculty_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// GetDepartment godoc
// @Summary Get department by id
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *FacultyHandler) GetDepartment(c *gin.Context) {
	department, err := h.service.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Param payload body service.DepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Router /departments [post]
func (h *FacultyHandler) CreateDepartment(c *gin.Context) {
	var req service.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.service.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// UpdateDepartment godoc
// @Summary Update department
// @Tags Departments
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body service.DepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Router /departments/{id} [put]
func (h *FacultyHandler) UpdateDepartment(c *gin.Context) {
	var req service.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.service.UpdateDepartment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// DeleteDepartment godoc
// @Summary Delete department
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 204 {object} response.Envelope
// @Router /departments/{id} [delete]
func (h *FacultyHandler) DeleteDepartment(c *gin.Context) {
	if err := h.service.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
