package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/service"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/response"
)

// IngestHandler accepts CSV uploads for rosters, rooms and proximities.
type IngestHandler struct {
	service *service.IngestService
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{service: svc}
}

func openUpload(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "csv file upload required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file")
	}
	return file, nil
}

// Rosters godoc
// @Summary Upload course rosters
// @Description Replaces per-course student rosters from a CSV with columns course_code, student_no, student_name
// @Tags Ingest
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster CSV"
// @Success 200 {object} response.Envelope
// @Router /ingest/rosters [post]
func (h *IngestHandler) Rosters(c *gin.Context) {
	file, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	summary, err := h.service.IngestRosters(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Rooms godoc
// @Summary Upload exam rooms
// @Description Upserts rooms by name from a CSV with columns room, capacity
// @Tags Ingest
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Room CSV"
// @Success 200 {object} response.Envelope
// @Router /ingest/rooms [post]
func (h *IngestHandler) Rooms(c *gin.Context) {
	file, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	summary, err := h.service.IngestRooms(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Proximities godoc
// @Summary Upload room proximity pairs
// @Description Replaces per-room neighbor lists from a CSV with columns room, neighbors (semicolon separated)
// @Tags Ingest
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Proximity CSV"
// @Success 200 {object} response.Envelope
// @Router /ingest/proximities [post]
func (h *IngestHandler) Proximities(c *gin.Context) {
	file, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	summary, err := h.service.IngestProximities(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
