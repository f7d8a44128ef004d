package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

// CourseRepository handles persistence for course sections.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, code, title, department_id, instructor_id, student_count, exam_duration, has_exam, created_at, updated_at`

// List returns course sections matching filters with pagination metadata.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.HasExam != nil {
		conditions = append(conditions, fmt.Sprintf("has_exam = $%d", len(args)+1))
		args = append(args, *filter.HasExam)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(code) LIKE $%d OR LOWER(title) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"code":          true,
		"title":         true,
		"student_count": true,
		"created_at":    true,
		"updated_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "code"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", courseColumns, base, sortBy, order, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// ListEligible returns every section flagged for a final exam. The
// planner treats this set as its scheduling universe.
func (r *CourseRepository) ListEligible(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE has_exam = TRUE ORDER BY code ASC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list eligible courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course section by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode returns a course section by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE LOWER(code) = LOWER($1) LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode checks uniqueness of a section code.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE LOWER(code) = LOWER($1)"
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
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create persists a new course section.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, code, title, department_id, instructor_id, student_count, exam_duration, has_exam, created_at, updated_at) VALUES (:id, :code, :title, :department_id, :instructor_id, :student_count, :exam_duration, :has_exam, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course section.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, title = :title, department_id = :department_id, instructor_id = :instructor_id, student_count = :student_count, exam_duration = :exam_duration, has_exam = :has_exam, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course section.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// UpdateStudentCount synchronizes the stored headcount after a roster
// replace. It participates in the ingest transaction when exec is a tx.
func (r *CourseRepository) UpdateStudentCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error {
	if exec == nil {
		exec = r.db
	}
	const query = `UPDATE courses SET student_count = $2, updated_at = $3 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, count, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student count: %w", err)
	}
	return nil
}
