package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

// ExamRepository persists exam placements produced by planning runs.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new repository instance.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteAll clears the current timetable. A planning run calls it
// inside the replace transaction before inserting the new placements.
func (r *ExamRepository) DeleteAll(ctx context.Context, exec sqlx.ExtContext) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM exam_events`); err != nil {
		return fmt.Errorf("clear exam events: %w", err)
	}
	return nil
}

// BulkCreate inserts placements inside the replace transaction.
func (r *ExamRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, events []models.ExamEvent) error {
	target := r.exec(exec)

	const query = `INSERT INTO exam_events (id, course_id, room_id, extra_rooms, instructor_id, exam_date, start_time, end_time, created_at) VALUES (:id, :course_id, :room_id, :extra_rooms, :instructor_id, :exam_date, :start_time, :end_time, :created_at)`
	now := time.Now().UTC()
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		if events[i].CreatedAt.IsZero() {
			events[i].CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, events[i]); err != nil {
			return fmt.Errorf("insert exam event: %w", err)
		}
	}
	return nil
}

// Count returns the number of persisted placements.
func (r *ExamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM exam_events`); err != nil {
		return 0, fmt.Errorf("count exam events: %w", err)
	}
	return count, nil
}

// ListDetailed returns the timetable joined with course, room and
// instructor display fields, scoped by the viewer filter. Instructors
// see only their own sections, students only exams their number is
// enrolled in; an empty filter returns the full timetable.
func (r *ExamRepository) ListDetailed(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, error) {
	query := `
SELECT e.id, c.code AS course_code, c.title AS course_title, c.student_count,
       r.name AS room_name, e.extra_rooms, u.full_name AS instructor_name,
       e.exam_date, e.start_time, e.end_time
FROM exam_events e
JOIN courses c ON c.id = e.course_id
JOIN rooms r ON r.id = e.room_id
LEFT JOIN users u ON u.id = e.instructor_id
WHERE 1=1`
	var args []interface{}

	if filter.InstructorID != "" {
		query += fmt.Sprintf(" AND e.instructor_id = $%d", len(args)+1)
		args = append(args, filter.InstructorID)
	}
	if filter.StudentNo != "" {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM course_students cs WHERE cs.course_id = e.course_id AND cs.student_no = $%d)", len(args)+1)
		args = append(args, filter.StudentNo)
	}

	query += " ORDER BY e.exam_date ASC, e.start_time ASC, c.code ASC"

	var details []models.ExamDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list exam details: %w", err)
	}
	return details, nil
}
