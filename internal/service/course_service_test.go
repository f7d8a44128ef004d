package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

func TestCourseServiceCreateNormalizesAndDefaults(t *testing.T) {
	repo := &courseRepoStub{}
	svc := NewCourseService(repo, &courseRosterReaderStub{}, nil, nil)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Code:         " blm331 ",
		Title:        "  Algorithms ",
		DepartmentID: "d1",
		ExamDuration: 120,
	})

	require.NoError(t, err)
	assert.Equal(t, "BLM331", course.Code)
	assert.Equal(t, "Algorithms", course.Title)
	assert.True(t, course.HasExam)
	assert.Equal(t, 120, course.ExamDuration)
	require.Len(t, repo.created, 1)
}

func TestCourseServiceCreateRejectsDuplicateCode(t *testing.T) {
	repo := &courseRepoStub{existingCodes: map[string]bool{"BLM331": true}}
	svc := NewCourseService(repo, &courseRosterReaderStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Code:         "BLM331",
		Title:        "Algorithms",
		DepartmentID: "d1",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestCourseServiceCreateRejectsShortDuration(t *testing.T) {
	svc := NewCourseService(&courseRepoStub{}, &courseRosterReaderStub{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Code:         "BLM331",
		Title:        "Algorithms",
		DepartmentID: "d1",
		ExamDuration: 10,
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateNotFound(t *testing.T) {
	svc := NewCourseService(&courseRepoStub{}, &courseRosterReaderStub{}, nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateCourseRequest{
		Code:         "BLM331",
		Title:        "Algorithms",
		DepartmentID: "d1",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceRoster(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{
		"c1": {ID: "c1", Code: "BLM331"},
	}}
	rosters := &courseRosterReaderStub{entries: map[string][]models.CourseStudent{
		"c1": {{CourseID: "c1", StudentNo: "2021001", StudentName: "Ali Demir"}},
	}}
	svc := NewCourseService(repo, rosters, nil, nil)

	entries, err := svc.Roster(context.Background(), "c1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2021001", entries[0].StudentNo)
}

type courseRepoStub struct {
	courses       map[string]*models.Course
	existingCodes map[string]bool
	created       []*models.Course
}

func (s *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	result := make([]models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		result = append(result, *course)
	}
	return result, len(result), nil
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (s *courseRepoStub) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	return s.existingCodes[code], nil
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	s.created = append(s.created, course)
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	return nil
}

func (s *courseRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.courses, id)
	return nil
}

type courseRosterReaderStub struct {
	entries map[string][]models.CourseStudent
}

func (s *courseRosterReaderStub) ListByCourse(ctx context.Context, courseID string) ([]models.CourseStudent, error) {
	return s.entries[courseID], nil
}
