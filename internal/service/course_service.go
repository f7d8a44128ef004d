package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRosterReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseStudent, error)
}

// CreateCourseRequest captures fields for creating course sections.
type CreateCourseRequest struct {
	Code         string  `json:"code" validate:"required"`
	Title        string  `json:"title" validate:"required"`
	DepartmentID string  `json:"department_id" validate:"required"`
	InstructorID *string `json:"instructor_id,omitempty"`
	ExamDuration int     `json:"exam_duration" validate:"omitempty,min=30,max=240"`
	HasExam      *bool   `json:"has_exam,omitempty"`
}

// UpdateCourseRequest modifies course section fields.
type UpdateCourseRequest struct {
	Code         string  `json:"code" validate:"required"`
	Title        string  `json:"title" validate:"required"`
	DepartmentID string  `json:"department_id" validate:"required"`
	InstructorID *string `json:"instructor_id,omitempty"`
	ExamDuration int     `json:"exam_duration" validate:"omitempty,min=30,max=240"`
	HasExam      *bool   `json:"has_exam,omitempty"`
}

// CourseService handles course section workflows.
type CourseService struct {
	repo      courseRepository
	rosters   courseRosterReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(repo courseRepository, rosters courseRosterReader, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, rosters: rosters, validator: validate, logger: logger}
}

// List returns paginated course sections.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}

// Get returns a course section by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Roster returns the enrollment roster of a course section.
func (s *CourseService) Roster(ctx context.Context, id string) ([]models.CourseStudent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.rosters.ListByCourse(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return entries, nil
}

// Create adds a new course section ensuring code uniqueness.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	hasExam := true
	if req.HasExam != nil {
		hasExam = *req.HasExam
	}

	course := &models.Course{
		Code:         req.Code,
		Title:        strings.TrimSpace(req.Title),
		DepartmentID: req.DepartmentID,
		InstructorID: req.InstructorID,
		ExamDuration: req.ExamDuration,
		HasExam:      hasExam,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update modifies an existing course section.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	course.Code = req.Code
	course.Title = strings.TrimSpace(req.Title)
	course.DepartmentID = req.DepartmentID
	course.InstructorID = req.InstructorID
	course.ExamDuration = req.ExamDuration
	if req.HasExam != nil {
		course.HasExam = *req.HasExam
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course section.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
