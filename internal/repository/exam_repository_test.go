package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

func newExamRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExamRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_events")).
		WillReturnResult(sqlmock.NewResult(0, 12))

	require.NoError(t, repo.DeleteAll(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryBulkCreateAssignsIDs(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	extra := "A102"
	instructor := "teacher-1"
	events := []models.ExamEvent{
		{
			CourseID:  "course-1",
			RoomID:    "room-1",
			ExamDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			StartTime: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC),
		},
		{
			CourseID:     "course-2",
			RoomID:       "room-1",
			ExtraRooms:   &extra,
			InstructorID: &instructor,
			ExamDate:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			StartTime:    time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, repo.BulkCreate(context.Background(), nil, events))
	assert.NotEmpty(t, events[0].ID)
	assert.NotEmpty(t, events[1].ID)
	assert.False(t, events[0].CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryReplaceWithinTransaction(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_events")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(context.Background(), tx))
	require.NoError(t, repo.BulkCreate(context.Background(), tx, []models.ExamEvent{{
		CourseID:  "course-1",
		RoomID:    "room-1",
		ExamDate:  time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
		StartTime: time.Date(2026, 1, 6, 13, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC),
	}}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListDetailedFullTimetable(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_code", "course_title", "student_count", "room_name", "extra_rooms", "instructor_name", "exam_date", "start_time", "end_time"}).
		AddRow("exam-1", "BLM331", "Algorithms", 55, "A101", nil, "Dr. Aydin", time.Now(), time.Now(), time.Now())
	mock.ExpectQuery("SELECT e.id, c.code AS course_code").
		WillReturnRows(rows)

	details, err := repo.ListDetailed(context.Background(), models.ExamFilter{})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "BLM331", details[0].CourseCode)
	assert.Nil(t, details[0].ExtraRooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListDetailedScopedToStudent(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_code", "course_title", "student_count", "room_name", "extra_rooms", "instructor_name", "exam_date", "start_time", "end_time"})
	mock.ExpectQuery("SELECT e.id, c.code AS course_code.+EXISTS \\(SELECT 1 FROM course_students cs").
		WithArgs("2021001").
		WillReturnRows(rows)

	details, err := repo.ListDetailed(context.Background(), models.ExamFilter{StudentNo: "2021001"})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListDetailedScopedToInstructor(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_code", "course_title", "student_count", "room_name", "extra_rooms", "instructor_name", "exam_date", "start_time", "end_time"}).
		AddRow("exam-2", "MAT110", "Calculus I", 70, "B201", "B202", "Dr. Demir", time.Now(), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("e.instructor_id = $1")).
		WithArgs("teacher-1").
		WillReturnRows(rows)

	details, err := repo.ListDetailed(context.Background(), models.ExamFilter{InstructorID: "teacher-1"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].ExtraRooms)
	assert.Equal(t, "B202", *details[0].ExtraRooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}
