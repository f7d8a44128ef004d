package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func sampleDetails() []models.ExamDetail {
	return []models.ExamDetail{
		{
			ID:           "e1",
			CourseCode:   "BLM331",
			CourseTitle:  "Algorithms",
			StudentCount: 42,
			RoomName:     "A101",
			ExamDate:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			StartTime:    time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC),
		},
	}
}

func TestScheduleServiceTimetableCacheMiss(t *testing.T) {
	exams := &examReaderStub{details: sampleDetails()}
	cache := newTimetableCacheStub()
	metrics := &cacheRecorderStub{}
	svc := NewScheduleService(exams, cache, metrics, nil, time.Minute)

	details, err := svc.Timetable(context.Background(), adminClaims())

	require.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Equal(t, []models.ExamFilter{{}}, exams.filters)
	assert.Contains(t, cache.entries, "timetable:all")
	require.Len(t, metrics.hits, 1)
	assert.False(t, metrics.hits[0])
}

func TestScheduleServiceTimetableCacheHit(t *testing.T) {
	exams := &examReaderStub{}
	cache := newTimetableCacheStub()
	cache.entries["timetable:all"] = sampleDetails()
	metrics := &cacheRecorderStub{}
	svc := NewScheduleService(exams, cache, metrics, nil, time.Minute)

	details, err := svc.Timetable(context.Background(), adminClaims())

	require.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Empty(t, exams.filters)
	require.Len(t, metrics.hits, 1)
	assert.True(t, metrics.hits[0])
}

func TestScheduleServiceTimetableScopesStudent(t *testing.T) {
	exams := &examReaderStub{details: sampleDetails()}
	cache := newTimetableCacheStub()
	svc := NewScheduleService(exams, cache, nil, nil, time.Minute)

	claims := &models.JWTClaims{UserID: "u-9", Role: models.RoleStudent, StudentNo: "2021001"}
	_, err := svc.Timetable(context.Background(), claims)

	require.NoError(t, err)
	assert.Equal(t, []models.ExamFilter{{StudentNo: "2021001"}}, exams.filters)
	assert.Contains(t, cache.entries, "timetable:student:2021001")
}

func TestFilterForViewer(t *testing.T) {
	tests := []struct {
		name    string
		claims  *models.JWTClaims
		want    models.ExamFilter
		errCode string
	}{
		{
			name:   "admin sees everything",
			claims: &models.JWTClaims{UserID: "a", Role: models.RoleAdmin},
			want:   models.ExamFilter{},
		},
		{
			name:   "department head sees everything",
			claims: &models.JWTClaims{UserID: "d", Role: models.RoleDepartmentHead},
			want:   models.ExamFilter{},
		},
		{
			name:   "teacher scoped to own sections",
			claims: &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher},
			want:   models.ExamFilter{InstructorID: "t-1"},
		},
		{
			name:   "student scoped to student number",
			claims: &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent, StudentNo: "2021001"},
			want:   models.ExamFilter{StudentNo: "2021001"},
		},
		{
			name:    "student without number rejected",
			claims:  &models.JWTClaims{UserID: "s-2", Role: models.RoleStudent},
			errCode: appErrors.ErrForbidden.Code,
		},
		{
			name:    "unknown role rejected",
			claims:  &models.JWTClaims{UserID: "x", Role: models.UserRole("JANITOR")},
			errCode: appErrors.ErrForbidden.Code,
		},
		{
			name:    "missing claims rejected",
			claims:  nil,
			errCode: appErrors.ErrUnauthorized.Code,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := FilterForViewer(tt.claims)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errCode, appErrors.FromError(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter)
		})
	}
}

type examReaderStub struct {
	details []models.ExamDetail
	err     error
	filters []models.ExamFilter
}

func (e *examReaderStub) ListDetailed(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, error) {
	e.filters = append(e.filters, filter)
	return e.details, e.err
}

type timetableCacheStub struct {
	entries map[string][]models.ExamDetail
}

func newTimetableCacheStub() *timetableCacheStub {
	return &timetableCacheStub{entries: map[string][]models.ExamDetail{}}
}

func (c *timetableCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	target, ok := dest.(*[]models.ExamDetail)
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, "unexpected cache destination")
	}
	*target = cached
	return nil
}

func (c *timetableCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	details, ok := value.([]models.ExamDetail)
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, "unexpected cache value")
	}
	c.entries[key] = details
	return nil
}

type cacheRecorderStub struct {
	hits []bool
}

func (c *cacheRecorderStub) RecordCacheOperation(hit bool, duration time.Duration) {
	c.hits = append(c.hits, hit)
}
