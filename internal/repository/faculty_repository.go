package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

// FacultyRepository handles persistence for faculties and departments.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new repository instance.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// ListFaculties returns all faculties ordered by name.
func (r *FacultyRepository) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, name, code, created_at, updated_at FROM faculties ORDER BY name ASC`
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// FindFacultyByID returns a faculty by id.
func (r *FacultyRepository) FindFacultyByID(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT id, name, code, created_at, updated_at FROM faculties WHERE id = $1 LIMIT 1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FacultyExistsByCode checks uniqueness of a faculty code.
func (r *FacultyRepository) FacultyExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM faculties WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check faculty code: %w", err)
	}
	return true, nil
}

// CreateFaculty persists a new faculty.
func (r *FacultyRepository) CreateFaculty(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = now
	}
	faculty.UpdatedAt = now

	const query = `INSERT INTO faculties (id, name, code, created_at, updated_at) VALUES (:id, :name, :code, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// UpdateFaculty modifies a faculty.
func (r *FacultyRepository) UpdateFaculty(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculties SET name = :name, code = :code, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return nil
}

// DeleteFaculty removes a faculty record.
func (r *FacultyRepository) DeleteFaculty(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM faculties WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return nil
}

// CountDepartments returns number of departments under a faculty.
func (r *FacultyRepository) CountDepartments(ctx context.Context, facultyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM departments WHERE faculty_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, facultyID); err != nil {
		return 0, fmt.Errorf("count departments: %w", err)
	}
	return count, nil
}

// ListDepartments returns departments, optionally scoped to a faculty.
func (r *FacultyRepository) ListDepartments(ctx context.Context, facultyID string) ([]models.Department, error) {
	query := `SELECT id, name, code, faculty_id, created_at, updated_at FROM departments`
	var args []interface{}
	if facultyID != "" {
		query += " WHERE faculty_id = $1"
		args = append(args, facultyID)
	}
	query += " ORDER BY name ASC"

	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query, args...); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindDepartmentByID returns a department by id.
func (r *FacultyRepository) FindDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, code, faculty_id, created_at, updated_at FROM departments WHERE id = $1 LIMIT 1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// CreateDepartment persists a new department.
func (r *FacultyRepository) CreateDepartment(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if department.CreatedAt.IsZero() {
		department.CreatedAt = now
	}
	department.UpdatedAt = now

	const query = `INSERT INTO departments (id, name, code, faculty_id, created_at, updated_at) VALUES (:id, :name, :code, :faculty_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// UpdateDepartment modifies a department.
func (r *FacultyRepository) UpdateDepartment(ctx context.Context, department *models.Department) error {
	department.UpdatedAt = time.Now().UTC()
	const query = `UPDATE departments SET name = :name, code = :code, faculty_id = :faculty_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// DeleteDepartment removes a department record.
func (r *FacultyRepository) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return nil
}

// CountCourses returns number of courses attached to a department.
func (r *FacultyRepository) CountCourses(ctx context.Context, departmentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM courses WHERE department_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, departmentID); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}
