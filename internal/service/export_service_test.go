package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

func TestExportServiceExportCSV(t *testing.T) {
	extra := "A102, A103"
	instructor := "Dr. Yilmaz"
	exams := &examReaderStub{details: []models.ExamDetail{
		{
			ID:             "e1",
			CourseCode:     "BLM331",
			CourseTitle:    "Algorithms",
			StudentCount:   42,
			RoomName:       "A101",
			ExtraRooms:     &extra,
			InstructorName: &instructor,
			ExamDate:       time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			StartTime:      time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			EndTime:        time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC),
		},
	}}
	svc := NewExportService(exams, nil, nil, "", nil)

	result, err := svc.Export(context.Background(), adminClaims(), ExportFormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "exam_timetable_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Date,Start,End,Code,Course,Students,Room(s),Instructor")
	assert.Contains(t, body, "2026-01-05,09:00,10:30,BLM331,Algorithms,42,\"A101, A102, A103\",Dr. Yilmaz")
}

func TestExportServiceExportPDF(t *testing.T) {
	exams := &examReaderStub{details: []models.ExamDetail{
		{
			ID:           "e1",
			CourseCode:   "BLM331",
			CourseTitle:  "Algorithms",
			StudentCount: 42,
			RoomName:     "A101",
			ExamDate:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			StartTime:    time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC),
		},
	}}
	svc := NewExportService(exams, nil, nil, "Winter Finals", nil)

	result, err := svc.Export(context.Background(), adminClaims(), ExportFormatPDF)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	require.NotEmpty(t, result.Payload)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceScopesViewer(t *testing.T) {
	exams := &examReaderStub{}
	svc := NewExportService(exams, nil, nil, "", nil)

	claims := &models.JWTClaims{UserID: "t-7", Role: models.RoleTeacher}
	_, err := svc.Export(context.Background(), claims, ExportFormatCSV)

	require.NoError(t, err)
	assert.Equal(t, []models.ExamFilter{{InstructorID: "t-7"}}, exams.filters)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&examReaderStub{}, nil, nil, "", nil)

	_, err := svc.Export(context.Background(), adminClaims(), ExportFormat("xlsx"))

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		raw     string
		want    ExportFormat
		wantErr bool
	}{
		{raw: "", want: ExportFormatCSV},
		{raw: "csv", want: ExportFormatCSV},
		{raw: " CSV ", want: ExportFormatCSV},
		{raw: "pdf", want: ExportFormatPDF},
		{raw: "PDF", want: ExportFormatPDF},
		{raw: "xlsx", wantErr: true},
	}

	for _, tt := range tests {
		format, err := ParseExportFormat(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, format, tt.raw)
	}
}
