package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

func strPtr(v string) *string { return &v }

type plannerFixtureConfig struct {
	courses     []models.Course
	rosters     map[string][]string
	rooms       []models.Room
	proximities []models.RoomProximity
	blackouts   map[string][]int
	examDays    []string
	slotTimes   []string
	tx          txProvider
}

type plannerFixture struct {
	service *PlannerService
	exams   *examWriterStub
	cache   *cacheInvalidatorStub
	metrics *planRecorderStub
}

func newPlannerServiceFixture(t *testing.T, cfg plannerFixtureConfig) *plannerFixture {
	t.Helper()

	if cfg.examDays == nil {
		cfg.examDays = []string{"2026-01-05"}
	}
	if cfg.slotTimes == nil {
		cfg.slotTimes = []string{"09:00"}
	}
	if cfg.tx == nil {
		cfg.tx = noopTxProvider{}
	}

	exams := &examWriterStub{}
	cache := &cacheInvalidatorStub{}
	metrics := &planRecorderStub{}

	service := NewPlannerService(
		courseReaderStub{courses: cfg.courses},
		rosterReaderStub{rosters: cfg.rosters},
		roomReaderStub{rooms: cfg.rooms, proximities: cfg.proximities},
		blackoutReaderStub{weekdays: cfg.blackouts},
		exams,
		cache,
		metrics,
		cfg.tx,
		nil,
		PlannerRunConfig{ExamDays: cfg.examDays, SlotTimes: cfg.slotTimes},
	)

	return &plannerFixture{service: service, exams: exams, cache: cache, metrics: metrics}
}

func TestPlannerServiceRunSchedulesAndPersists(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "c1", Code: "BLM331", Title: "Algorithms", InstructorID: strPtr("inst-1"), StudentCount: 30, ExamDuration: 90},
		},
		rosters: map[string][]string{"c1": {"2021001", "2021002"}},
		rooms:   []models.Room{{ID: "r1", Name: "A101", Capacity: 40, Available: true}},
		tx:      txProvider,
	})

	result, err := fixture.service.Run(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ScheduledCount)
	assert.Empty(t, result.UnscheduledCourses)
	assert.Empty(t, result.Message)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	require.Len(t, fixture.exams.created, 1)
	event := fixture.exams.created[0]
	assert.Equal(t, "c1", event.CourseID)
	assert.Equal(t, "r1", event.RoomID)
	require.NotNil(t, event.InstructorID)
	assert.Equal(t, "inst-1", *event.InstructorID)
	assert.Nil(t, event.ExtraRooms)
	assert.True(t, fixture.exams.cleared)

	assert.Equal(t, []string{"timetable:*"}, fixture.cache.patterns)
	assert.Equal(t, []string{"success"}, fixture.metrics.results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerServiceRunJoinsOverflowRoomNames(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "c1", Code: "BLM331", Title: "Algorithms", StudentCount: 90},
		},
		rooms: []models.Room{
			{ID: "r1", Name: "A101", Capacity: 50, Available: true},
			{ID: "r2", Name: "A102", Capacity: 45, Available: true},
		},
		proximities: []models.RoomProximity{{ID: "p1", RoomAID: "r1", RoomBID: "r2"}},
		tx:          txProvider,
	})

	result, err := fixture.service.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.ScheduledCount)
	require.Len(t, fixture.exams.created, 1)
	event := fixture.exams.created[0]
	assert.Equal(t, "r1", event.RoomID)
	require.NotNil(t, event.ExtraRooms)
	assert.Equal(t, "A102", *event.ExtraRooms)
	assert.Nil(t, event.InstructorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerServiceRunReportsUnscheduled(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "c1", Code: "BLM331", Title: "Algorithms", StudentCount: 40},
			{ID: "c2", Code: "BLM231", Title: "Discrete Mathematics", StudentCount: 20},
		},
		rosters: map[string][]string{
			"c1": {"2021001", "2021002"},
			"c2": {"2021001"},
		},
		rooms: []models.Room{{ID: "r1", Name: "A101", Capacity: 60, Available: true}},
		tx:    txProvider,
	})

	result, err := fixture.service.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ScheduledCount)
	assert.Equal(t, []string{"discrete mathematics"}, result.UnscheduledCourses)
	assert.Equal(t, "1 course group(s) could not be placed on the grid", result.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerServiceRunNoEligibleCourses(t *testing.T) {
	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{
		rooms: []models.Room{{ID: "r1", Name: "A101", Capacity: 40, Available: true}},
	})

	result, err := fixture.service.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"error"}, fixture.metrics.results)
}

func TestPlannerServiceRunNoRooms(t *testing.T) {
	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "c1", Code: "BLM331", Title: "Algorithms", StudentCount: 30},
		},
	})

	result, err := fixture.service.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestPlannerServiceRunPersistFailureRollsBack(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{
		courses: []models.Course{
			{ID: "c1", Code: "BLM331", Title: "Algorithms", StudentCount: 30},
		},
		rooms: []models.Room{{ID: "r1", Name: "A101", Capacity: 40, Available: true}},
		tx:    txProvider,
	})
	fixture.exams.createErr = appErrors.Clone(appErrors.ErrInternal, "insert failed")

	result, err := fixture.service.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fixture.cache.patterns)
	assert.Equal(t, []string{"error"}, fixture.metrics.results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerServiceRunRejectsConcurrentRun(t *testing.T) {
	fixture := newPlannerServiceFixture(t, plannerFixtureConfig{})

	fixture.service.mu.Lock()
	defer fixture.service.mu.Unlock()

	result, err := fixture.service.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, appErrors.ErrPlanInProgress.Code, appErrors.FromError(err).Code)
}

type courseReaderStub struct {
	courses []models.Course
	err     error
}

func (c courseReaderStub) ListEligible(ctx context.Context) ([]models.Course, error) {
	return c.courses, c.err
}

type rosterReaderStub struct {
	rosters map[string][]string
	err     error
}

func (r rosterReaderStub) StudentNumbersByCourse(ctx context.Context) (map[string][]string, error) {
	return r.rosters, r.err
}

type roomReaderStub struct {
	rooms       []models.Room
	proximities []models.RoomProximity
	err         error
}

func (r roomReaderStub) ListAvailable(ctx context.Context) ([]models.Room, error) {
	return r.rooms, r.err
}

func (r roomReaderStub) ListProximities(ctx context.Context) ([]models.RoomProximity, error) {
	return r.proximities, r.err
}

type blackoutReaderStub struct {
	weekdays map[string][]int
	err      error
}

func (b blackoutReaderStub) WeekdaysByInstructor(ctx context.Context) (map[string][]int, error) {
	return b.weekdays, b.err
}

type examWriterStub struct {
	cleared   bool
	created   []models.ExamEvent
	deleteErr error
	createErr error
}

func (e *examWriterStub) DeleteAll(ctx context.Context, exec sqlx.ExtContext) error {
	if e.deleteErr != nil {
		return e.deleteErr
	}
	e.cleared = true
	return nil
}

func (e *examWriterStub) BulkCreate(ctx context.Context, exec sqlx.ExtContext, events []models.ExamEvent) error {
	if e.createErr != nil {
		return e.createErr
	}
	e.created = append(e.created, events...)
	return nil
}

type cacheInvalidatorStub struct {
	patterns []string
	err      error
}

func (c *cacheInvalidatorStub) DeleteByPattern(ctx context.Context, pattern string) error {
	if c.err != nil {
		return c.err
	}
	c.patterns = append(c.patterns, pattern)
	return nil
}

type planRecorderStub struct {
	results []string
}

func (p *planRecorderStub) ObservePlanRun(result string, duration time.Duration, scheduled, unscheduled int) {
	p.results = append(p.results, result)
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
