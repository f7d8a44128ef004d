package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

func TestIngestServiceRostersReplacesAndCounts(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	courses := &ingestCourseRepoStub{courses: map[string]*models.Course{
		"BLM331": {ID: "c1", Code: "BLM331"},
	}}
	rosters := &rosterWriterStub{}
	svc := NewIngestService(courses, rosters, &ingestRoomRepoStub{}, txProvider, nil)

	csv := strings.Join([]string{
		"course_code,student_no,student_name",
		"blm331,2021001,Ali Demir",
		"BLM331,2021001,Ali Demir",
		"XXX101,2021003,Veli Kaya",
		"BLM331,2021002,Ayse Yildiz",
	}, "\n")

	summary, err := svc.IngestRosters(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	require.Len(t, summary.Skipped, 2)
	assert.Contains(t, summary.Skipped[0], "row 3: duplicate student 2021001")
	assert.Contains(t, summary.Skipped[1], "row 4: unknown course XXX101")

	require.Len(t, rosters.replaced["c1"], 2)
	assert.Equal(t, "2021001", rosters.replaced["c1"][0].StudentNo)
	assert.Equal(t, "Ayse Yildiz", rosters.replaced["c1"][1].StudentName)
	assert.Equal(t, 2, courses.counts["c1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestServiceRostersRejectsEmptyUpload(t *testing.T) {
	svc := NewIngestService(&ingestCourseRepoStub{}, &rosterWriterStub{}, &ingestRoomRepoStub{}, noopTxProvider{}, nil)

	_, err := svc.IngestRosters(context.Background(), strings.NewReader("course_code,student_no,student_name\n"))

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIngestServiceRoomsUpsertsByName(t *testing.T) {
	rooms := &ingestRoomRepoStub{rooms: map[string]*models.Room{
		"A101": {ID: "r1", Name: "A101", Capacity: 40, Available: true},
	}}
	svc := NewIngestService(&ingestCourseRepoStub{}, &rosterWriterStub{}, rooms, noopTxProvider{}, nil)

	csv := strings.Join([]string{
		"room,capacity",
		"A101,60",
		"B202,45",
		"C303,0",
	}, "\n")

	summary, err := svc.IngestRooms(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	require.Len(t, summary.Skipped, 1)
	assert.Contains(t, summary.Skipped[0], "row 4")

	require.Len(t, rooms.updated, 1)
	assert.Equal(t, 60, rooms.updated[0].Capacity)
	require.Len(t, rooms.created, 1)
	assert.Equal(t, "B202", rooms.created[0].Name)
	assert.Equal(t, 45, rooms.created[0].Capacity)
	assert.True(t, rooms.created[0].Available)
}

func TestIngestServiceProximitiesResolvesNames(t *testing.T) {
	rooms := &ingestRoomRepoStub{rooms: map[string]*models.Room{
		"A101": {ID: "r1", Name: "A101"},
		"A102": {ID: "r2", Name: "A102"},
		"A103": {ID: "r3", Name: "A103"},
	}}
	svc := NewIngestService(&ingestCourseRepoStub{}, &rosterWriterStub{}, rooms, noopTxProvider{}, nil)

	csv := strings.Join([]string{
		"room,neighbors",
		"A101,A102;A103;Z999",
		"Z888,A102",
	}, "\n")

	summary, err := svc.IngestProximities(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	require.Len(t, summary.Skipped, 2)
	assert.Contains(t, summary.Skipped[0], "unknown neighbor Z999")
	assert.Contains(t, summary.Skipped[1], "unknown room Z888")
	assert.Equal(t, []string{"r2", "r3"}, rooms.proximities["r1"])
}

type ingestCourseRepoStub struct {
	courses map[string]*models.Course
	counts  map[string]int
}

func (s *ingestCourseRepoStub) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	course, ok := s.courses[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (s *ingestCourseRepoStub) UpdateStudentCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error {
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[id] = count
	return nil
}

type rosterWriterStub struct {
	replaced map[string][]models.CourseStudent
}

func (s *rosterWriterStub) ReplaceForCourse(ctx context.Context, exec sqlx.ExtContext, courseID string, entries []models.CourseStudent) error {
	if s.replaced == nil {
		s.replaced = map[string][]models.CourseStudent{}
	}
	s.replaced[courseID] = entries
	return nil
}

type ingestRoomRepoStub struct {
	rooms       map[string]*models.Room
	created     []*models.Room
	updated     []*models.Room
	proximities map[string][]string
}

func (s *ingestRoomRepoStub) FindByName(ctx context.Context, name string) (*models.Room, error) {
	room, ok := s.rooms[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return room, nil
}

func (s *ingestRoomRepoStub) Create(ctx context.Context, room *models.Room) error {
	s.created = append(s.created, room)
	return nil
}

func (s *ingestRoomRepoStub) Update(ctx context.Context, room *models.Room) error {
	s.updated = append(s.updated, room)
	return nil
}

func (s *ingestRoomRepoStub) ReplaceProximitiesForRoom(ctx context.Context, exec sqlx.ExtContext, roomID string, neighborIDs []string) error {
	if s.proximities == nil {
		s.proximities = map[string][]string{}
	}
	s.proximities[roomID] = neighborIDs
	return nil
}
