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

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func courseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "title", "department_id", "instructor_id", "student_count", "exam_duration", "has_exam", "created_at", "updated_at"})
}

func TestCourseRepositoryListEligible(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := courseRows().
		AddRow("course-1", "BLM331", "Algorithms", "dept-1", "teacher-1", 55, 90, true, time.Now(), time.Now()).
		AddRow("course-2", "YZM332", "ALGORITHMS", "dept-2", "teacher-2", 40, 60, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE has_exam = TRUE ORDER BY code ASC")).
		WillReturnRows(rows)

	courses, err := repo.ListEligible(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "BLM331", courses[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	hasExam := true
	mock.ExpectQuery(regexp.QuoteMeta("department_id = $1 AND has_exam = $2")).
		WithArgs("dept-1", true).
		WillReturnRows(courseRows().
			AddRow("course-1", "BLM331", "Algorithms", "dept-1", nil, 55, 90, true, time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses")).
		WithArgs("dept-1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{DepartmentID: "dept-1", HasExam: &hasExam})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, courses[0].InstructorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE LOWER(code) = LOWER($1)")).
		WithArgs("BLM331").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "BLM331", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsByCodeNoMatch(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE LOWER(code) = LOWER($1)")).
		WithArgs("XXX000").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	exists, err := repo.ExistsByCode(context.Background(), "XXX000", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{Code: "BLM331", Title: "Algorithms", DepartmentID: "dept-1", StudentCount: 55, ExamDuration: 90, HasExam: true}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateStudentCountInTx(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET student_count = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("course-1", 48, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStudentCount(context.Background(), tx, "course-1", 48))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
