package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

// RosterRepository handles persistence for course enrollment rosters.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository creates a new repository instance.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByCourse returns roster entries for one course section.
func (r *RosterRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseStudent, error) {
	const query = `SELECT id, course_id, student_no, student_name FROM course_students WHERE course_id = $1 ORDER BY student_no ASC`
	var entries []models.CourseStudent
	if err := r.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}

// StudentNumbersByCourse loads every roster row and groups student
// numbers by course, the in-memory shape a planning run consumes.
func (r *RosterRepository) StudentNumbersByCourse(ctx context.Context) (map[string][]string, error) {
	const query = `SELECT id, course_id, student_no, student_name FROM course_students ORDER BY course_id ASC, student_no ASC`
	var entries []models.CourseStudent
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}

	byCourse := make(map[string][]string, len(entries))
	for _, entry := range entries {
		byCourse[entry.CourseID] = append(byCourse[entry.CourseID], entry.StudentNo)
	}
	return byCourse, nil
}

// ReplaceForCourse swaps the full roster of a course section. It
// participates in the ingest transaction when exec is a tx.
func (r *RosterRepository) ReplaceForCourse(ctx context.Context, exec sqlx.ExtContext, courseID string, entries []models.CourseStudent) error {
	target := r.exec(exec)

	if _, err := target.ExecContext(ctx, `DELETE FROM course_students WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}

	const insertQuery = `INSERT INTO course_students (id, course_id, student_no, student_name) VALUES (:id, :course_id, :student_no, :student_name)`
	for i := range entries {
		entries[i].CourseID = courseID
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, entries[i]); err != nil {
			return fmt.Errorf("insert roster entry: %w", err)
		}
	}
	return nil
}
