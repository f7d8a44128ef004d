package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/csvio"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type ingestCourseRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	UpdateStudentCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error
}

type ingestRosterWriter interface {
	ReplaceForCourse(ctx context.Context, exec sqlx.ExtContext, courseID string, entries []models.CourseStudent) error
}

type ingestRoomRepository interface {
	FindByName(ctx context.Context, name string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	ReplaceProximitiesForRoom(ctx context.Context, exec sqlx.ExtContext, roomID string, neighborIDs []string) error
}

// IngestSummary reports what one spreadsheet upload changed. Rows the
// importer had to skip are listed as warnings rather than failing the
// whole upload.
type IngestSummary struct {
	Processed int      `json:"processed"`
	Skipped   []string `json:"skipped,omitempty"`
}

// IngestService loads roster, room and proximity spreadsheets into the
// database.
type IngestService struct {
	courses ingestCourseRepository
	rosters ingestRosterWriter
	rooms   ingestRoomRepository
	tx      txProvider
	logger  *zap.Logger
}

// NewIngestService constructs an IngestService.
func NewIngestService(courses ingestCourseRepository, rosters ingestRosterWriter, rooms ingestRoomRepository, tx txProvider, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{courses: courses, rosters: rosters, rooms: rooms, tx: tx, logger: logger}
}

// IngestRosters replaces course rosters from an uploaded spreadsheet
// and synchronizes each touched course's headcount. The replace runs
// in one transaction so a partial upload never mixes with stale rows.
func (s *IngestService) IngestRosters(ctx context.Context, r io.Reader) (*IngestSummary, error) {
	rows, err := csvio.ParseRosters(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable roster spreadsheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster spreadsheet has no rows")
	}

	summary := &IngestSummary{}

	type courseRoster struct {
		courseID string
		entries  []models.CourseStudent
		seen     map[string]struct{}
	}
	byCourse := make(map[string]*courseRoster)
	order := make([]string, 0)

	for i, row := range rows {
		if row.CourseCode == "" || row.StudentNo == "" {
			summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: missing course code or student number", i+2))
			continue
		}

		roster, ok := byCourse[row.CourseCode]
		if !ok {
			course, err := s.courses.FindByCode(ctx, row.CourseCode)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: unknown course %s", i+2, row.CourseCode))
					byCourse[row.CourseCode] = &courseRoster{}
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve course")
			}
			roster = &courseRoster{courseID: course.ID, seen: make(map[string]struct{})}
			byCourse[row.CourseCode] = roster
			order = append(order, row.CourseCode)
		}
		if roster.courseID == "" {
			// unknown course already reported
			continue
		}
		if _, dup := roster.seen[row.StudentNo]; dup {
			summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: duplicate student %s in %s", i+2, row.StudentNo, row.CourseCode))
			continue
		}
		roster.seen[row.StudentNo] = struct{}{}
		roster.entries = append(roster.entries, models.CourseStudent{
			StudentNo:   row.StudentNo,
			StudentName: row.StudentName,
		})
	}

	if len(order) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no roster rows matched a known course")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin roster transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, code := range order {
		roster := byCourse[code]
		if err = s.rosters.ReplaceForCourse(ctx, tx, roster.courseID, roster.entries); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace roster")
			return nil, err
		}
		if err = s.courses.UpdateStudentCount(ctx, tx, roster.courseID, len(roster.entries)); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course headcount")
			return nil, err
		}
		summary.Processed += len(roster.entries)
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit roster transaction")
		return nil, err
	}

	s.logger.Info("roster ingest completed",
		zap.Int("courses", len(order)),
		zap.Int("students", summary.Processed),
		zap.Int("skipped", len(summary.Skipped)),
	)
	return summary, nil
}

// IngestRooms upserts rooms by name from an uploaded spreadsheet.
func (s *IngestService) IngestRooms(ctx context.Context, r io.Reader) (*IngestSummary, error) {
	rows, err := csvio.ParseRooms(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable room spreadsheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room spreadsheet has no rows")
	}

	summary := &IngestSummary{}
	for i, row := range rows {
		if row.Name == "" || row.Capacity <= 0 {
			summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: missing room name or capacity", i+2))
			continue
		}

		existing, err := s.rooms.FindByName(ctx, row.Name)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve room")
		}

		if existing != nil {
			existing.Capacity = row.Capacity
			if err := s.rooms.Update(ctx, existing); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
			}
		} else {
			room := &models.Room{Name: row.Name, Capacity: row.Capacity, Available: true}
			if err := s.rooms.Create(ctx, room); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
			}
		}
		summary.Processed++
	}

	s.logger.Info("room ingest completed", zap.Int("rooms", summary.Processed), zap.Int("skipped", len(summary.Skipped)))
	return summary, nil
}

// IngestProximities replaces per-room proximity lists from an uploaded
// spreadsheet. Room names that do not resolve are skipped with a
// warning.
func (s *IngestService) IngestProximities(ctx context.Context, r io.Reader) (*IngestSummary, error) {
	rows, err := csvio.ParseProximities(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable proximity spreadsheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proximity spreadsheet has no rows")
	}

	summary := &IngestSummary{}
	for i, row := range rows {
		if row.Room == "" {
			summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: missing room name", i+2))
			continue
		}

		primary, err := s.rooms.FindByName(ctx, row.Room)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: unknown room %s", i+2, row.Room))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve room")
		}

		neighborIDs := make([]string, 0)
		for _, name := range row.NeighborNames() {
			neighbor, err := s.rooms.FindByName(ctx, name)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					summary.Skipped = append(summary.Skipped, fmt.Sprintf("row %d: unknown neighbor %s", i+2, name))
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve neighbor room")
			}
			neighborIDs = append(neighborIDs, neighbor.ID)
		}

		if err := s.rooms.ReplaceProximitiesForRoom(ctx, nil, primary.ID, neighborIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace proximities")
		}
		summary.Processed++
	}

	s.logger.Info("proximity ingest completed", zap.Int("rooms", summary.Processed), zap.Int("skipped", len(summary.Skipped)))
	return summary, nil
}
