package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

// BlackoutRepository handles persistence for instructor blackout weekdays.
type BlackoutRepository struct {
	db *sqlx.DB
}

// NewBlackoutRepository creates a new repository instance.
func NewBlackoutRepository(db *sqlx.DB) *BlackoutRepository {
	return &BlackoutRepository{db: db}
}

// ListAll returns every blackout row.
func (r *BlackoutRepository) ListAll(ctx context.Context) ([]models.InstructorBlackout, error) {
	const query = `SELECT id, instructor_id, weekday, created_at FROM instructor_blackouts ORDER BY instructor_id ASC, weekday ASC`
	var blackouts []models.InstructorBlackout
	if err := r.db.SelectContext(ctx, &blackouts, query); err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	return blackouts, nil
}

// ListForInstructor returns blackout weekdays for one instructor.
func (r *BlackoutRepository) ListForInstructor(ctx context.Context, instructorID string) ([]models.InstructorBlackout, error) {
	const query = `SELECT id, instructor_id, weekday, created_at FROM instructor_blackouts WHERE instructor_id = $1 ORDER BY weekday ASC`
	var blackouts []models.InstructorBlackout
	if err := r.db.SelectContext(ctx, &blackouts, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor blackouts: %w", err)
	}
	return blackouts, nil
}

// ReplaceForInstructor swaps the blackout set of one instructor
// atomically.
func (r *BlackoutRepository) ReplaceForInstructor(ctx context.Context, instructorID string, weekdays []int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin blackout replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM instructor_blackouts WHERE instructor_id = $1`, instructorID); err != nil {
		return fmt.Errorf("clear instructor blackouts: %w", err)
	}

	const insertQuery = `INSERT INTO instructor_blackouts (id, instructor_id, weekday) VALUES ($1, $2, $3)`
	for _, weekday := range weekdays {
		if _, err := tx.ExecContext(ctx, insertQuery, uuid.NewString(), instructorID, weekday); err != nil {
			return fmt.Errorf("insert instructor blackout: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit blackout replace: %w", err)
	}
	return nil
}

// WeekdaysByInstructor loads all blackout rows grouped by instructor,
// the shape a planning run consumes.
func (r *BlackoutRepository) WeekdaysByInstructor(ctx context.Context) (map[string][]int, error) {
	blackouts, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byInstructor := make(map[string][]int)
	for _, blackout := range blackouts {
		byInstructor[blackout.InstructorID] = append(byInstructor[blackout.InstructorID], blackout.Weekday)
	}
	return byInstructor, nil
}
