package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/export"
)

// ExportFormat enumerates supported timetable export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered timetable file.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the viewer-scoped timetable as a downloadable
// file.
type ExportService struct {
	exams  examReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	title  string
}

// NewExportService constructs an ExportService.
func NewExportService(exams examReader, csv csvRenderer, pdf pdfRenderer, title string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if title == "" {
		title = "Final Exam Timetable"
	}
	return &ExportService{exams: exams, csv: csv, pdf: pdf, title: title, logger: logger}
}

// Export renders the timetable visible to the viewer in the requested
// format.
func (s *ExportService) Export(ctx context.Context, claims *models.JWTClaims, format ExportFormat) (*ExportResult, error) {
	filter, err := FilterForViewer(claims)
	if err != nil {
		return nil, err
	}

	details, err := s.exams.ListDetailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable for export")
	}

	dataset := buildTimetableDataset(details)

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, s.title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}

	filename := fmt.Sprintf("exam_timetable_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func buildTimetableDataset(details []models.ExamDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, detail := range details {
		rooms := detail.RoomName
		if detail.ExtraRooms != nil && *detail.ExtraRooms != "" {
			rooms = rooms + ", " + *detail.ExtraRooms
		}
		instructor := ""
		if detail.InstructorName != nil {
			instructor = *detail.InstructorName
		}
		rows = append(rows, map[string]string{
			"Date":       detail.ExamDate.Format("2006-01-02"),
			"Start":      detail.StartTime.Format("15:04"),
			"End":        detail.EndTime.Format("15:04"),
			"Code":       detail.CourseCode,
			"Course":     detail.CourseTitle,
			"Students":   fmt.Sprintf("%d", detail.StudentCount),
			"Room(s)":    rooms,
			"Instructor": instructor,
		})
	}
	return export.Dataset{
		Headers: []string{"Date", "Start", "End", "Code", "Course", "Students", "Room(s)", "Instructor"},
		Rows:    rows,
	}
}

// ParseExportFormat normalizes a query parameter into a known format.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return ExportFormatCSV, nil
	case "pdf":
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}
