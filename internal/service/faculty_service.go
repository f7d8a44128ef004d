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

type facultyRepository interface {
	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	FindFacultyByID(ctx context.Context, id string) (*models.Faculty, error)
	FacultyExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	CreateFaculty(ctx context.Context, faculty *models.Faculty) error
	UpdateFaculty(ctx context.Context, faculty *models.Faculty) error
	DeleteFaculty(ctx context.Context, id string) error
	CountDepartments(ctx context.Context, facultyID string) (int, error)
	ListDepartments(ctx context.Context, facultyID string) ([]models.Department, error)
	FindDepartmentByID(ctx context.Context, id string) (*models.Department, error)
	CreateDepartment(ctx context.Context, department *models.Department) error
	UpdateDepartment(ctx context.Context, department *models.Department) error
	DeleteDepartment(ctx context.Context, id string) error
	CountCourses(ctx context.Context, departmentID string) (int, error)
}

// FacultyRequest captures fields for creating or updating faculties.
type FacultyRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// DepartmentRequest captures fields for creating or updating departments.
type DepartmentRequest struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
}

// FacultyService handles faculty and department workflows.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService creates a new faculty service.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// ListFaculties returns all faculties.
func (s *FacultyService) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	faculties, err := s.repo.ListFaculties(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculties")
	}
	return faculties, nil
}

// GetFaculty returns a faculty by identifier.
func (s *FacultyService) GetFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	faculty, err := s.repo.FindFacultyByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}

// CreateFaculty adds a new faculty ensuring code uniqueness.
func (s *FacultyService) CreateFaculty(ctx context.Context, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.repo.FacultyExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty code already exists")
	}

	faculty := &models.Faculty{Name: strings.TrimSpace(req.Name), Code: req.Code}
	if err := s.repo.CreateFaculty(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return faculty, nil
}

// UpdateFaculty modifies an existing faculty.
func (s *FacultyService) UpdateFaculty(ctx context.Context, id string, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	faculty, err := s.GetFaculty(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.repo.FacultyExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty code already exists")
	}

	faculty.Name = strings.TrimSpace(req.Name)
	faculty.Code = req.Code

	if err := s.repo.UpdateFaculty(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return faculty, nil
}

// DeleteFaculty removes a faculty when no departments remain.
func (s *FacultyService) DeleteFaculty(ctx context.Context, id string) error {
	faculty, err := s.GetFaculty(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountDepartments(ctx, faculty.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "faculty still has departments")
	}

	if err := s.repo.DeleteFaculty(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faculty")
	}
	return nil
}

// ListDepartments returns departments, optionally scoped to a faculty.
func (s *FacultyService) ListDepartments(ctx context.Context, facultyID string) ([]models.Department, error) {
	departments, err := s.repo.ListDepartments(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// GetDepartment returns a department by identifier.
func (s *FacultyService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.FindDepartmentByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// CreateDepartment adds a new department under an existing faculty.
func (s *FacultyService) CreateDepartment(ctx context.Context, req DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	if _, err := s.GetFaculty(ctx, req.FacultyID); err != nil {
		return nil, err
	}

	department := &models.Department{
		Name:      strings.TrimSpace(req.Name),
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		FacultyID: req.FacultyID,
	}
	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// UpdateDepartment modifies an existing department.
func (s *FacultyService) UpdateDepartment(ctx context.Context, id string, req DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetFaculty(ctx, req.FacultyID); err != nil {
		return nil, err
	}

	department.Name = strings.TrimSpace(req.Name)
	department.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	department.FacultyID = req.FacultyID

	if err := s.repo.UpdateDepartment(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	return department, nil
}

// DeleteDepartment removes a department when no courses remain.
func (s *FacultyService) DeleteDepartment(ctx context.Context, id string) error {
	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountCourses(ctx, department.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "department still has courses")
	}

	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	return nil
}
