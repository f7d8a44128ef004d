package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/planner"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type plannerCourseReader interface {
	ListEligible(ctx context.Context) ([]models.Course, error)
}

type plannerRosterReader interface {
	StudentNumbersByCourse(ctx context.Context) (map[string][]string, error)
}

type plannerRoomReader interface {
	ListAvailable(ctx context.Context) ([]models.Room, error)
	ListProximities(ctx context.Context) ([]models.RoomProximity, error)
}

type plannerBlackoutReader interface {
	WeekdaysByInstructor(ctx context.Context) (map[string][]int, error)
}

type examWriter interface {
	DeleteAll(ctx context.Context, exec sqlx.ExtContext) error
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, events []models.ExamEvent) error
}

type timetableInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type planRunRecorder interface {
	ObservePlanRun(result string, duration time.Duration, scheduled, unscheduled int)
}

// PlannerRunConfig carries the exogenous time grid and fallback
// duration for planning runs.
type PlannerRunConfig struct {
	ExamDays        []string
	SlotTimes       []string
	DefaultDuration time.Duration
}

// PlannerService orchestrates a full timetable rebuild: it loads the
// scheduling snapshot, runs the placement engine and atomically
// replaces the persisted timetable.
type PlannerService struct {
	courses   plannerCourseReader
	rosters   plannerRosterReader
	rooms     plannerRoomReader
	blackouts plannerBlackoutReader
	exams     examWriter
	cache     timetableInvalidator
	metrics   planRunRecorder
	tx        txProvider
	logger    *zap.Logger
	config    PlannerRunConfig

	mu sync.Mutex
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	courses plannerCourseReader,
	rosters plannerRosterReader,
	rooms plannerRoomReader,
	blackouts plannerBlackoutReader,
	exams examWriter,
	cache timetableInvalidator,
	metrics planRunRecorder,
	tx txProvider,
	logger *zap.Logger,
	cfg PlannerRunConfig,
) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 90 * time.Minute
	}
	return &PlannerService{
		courses:   courses,
		rosters:   rosters,
		rooms:     rooms,
		blackouts: blackouts,
		exams:     exams,
		cache:     cache,
		metrics:   metrics,
		tx:        tx,
		logger:    logger,
		config:    cfg,
	}
}

// Run executes one planning run. Only one run may be in flight; a
// concurrent call fails fast instead of queueing.
func (s *PlannerService) Run(ctx context.Context) (*models.PlanRunResult, error) {
	if !s.mu.TryLock() {
		return nil, appErrors.Clone(appErrors.ErrPlanInProgress, "a planning run is already in progress")
	}
	defer s.mu.Unlock()

	startedAt := time.Now().UTC()

	input, err := s.loadSnapshot(ctx)
	if err != nil {
		s.observe("error", startedAt, 0, 0)
		return nil, err
	}

	result := planner.Run(*input)
	events := s.toExamEvents(result.Events)

	if err := s.replaceTimetable(ctx, events); err != nil {
		s.observe("error", startedAt, 0, 0)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "timetable:*"); err != nil {
			s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
		}
	}

	finishedAt := time.Now().UTC()
	s.observe("success", startedAt, len(events), len(result.Unscheduled))

	s.logger.Info("planning run completed",
		zap.Int("scheduled", len(events)),
		zap.Int("unscheduled", len(result.Unscheduled)),
		zap.Duration("took", finishedAt.Sub(startedAt)),
	)

	run := &models.PlanRunResult{
		Success:            true,
		ScheduledCount:     len(events),
		UnscheduledCourses: result.Unscheduled,
		StartedAt:          startedAt,
		FinishedAt:         finishedAt,
	}
	if len(result.Unscheduled) > 0 {
		run.Message = fmt.Sprintf("%d course group(s) could not be placed on the grid", len(result.Unscheduled))
	}
	return run, nil
}

func (s *PlannerService) loadSnapshot(ctx context.Context) (*planner.Input, error) {
	courses, err := s.courses.ListEligible(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam-eligible courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no exam-eligible course sections to schedule")
	}

	rooms, err := s.rooms.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no available rooms to schedule into")
	}

	rosters, err := s.rosters.StudentNumbersByCourse(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course rosters")
	}

	proximities, err := s.rooms.ListProximities(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room proximities")
	}

	blackouts, err := s.blackouts.WeekdaysByInstructor(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor blackouts")
	}

	grid, err := planner.BuildGrid(s.config.ExamDays, s.config.SlotTimes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam grid configuration")
	}
	if len(grid.Days) == 0 || len(grid.Slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam grid has no days or slot times configured")
	}

	sections := lo.Map(courses, func(course models.Course, _ int) planner.Section {
		duration := s.config.DefaultDuration
		if course.ExamDuration > 0 {
			duration = time.Duration(course.ExamDuration) * time.Minute
		}
		var instructorID string
		if course.InstructorID != nil {
			instructorID = *course.InstructorID
		}
		return planner.Section{
			ID:           course.ID,
			Code:         course.Code,
			Title:        course.Title,
			StudentCount: course.StudentCount,
			Students:     rosters[course.ID],
			InstructorID: instructorID,
			Duration:     duration,
		}
	})

	return &planner.Input{
		Sections: sections,
		Rooms: lo.Map(rooms, func(room models.Room, _ int) planner.Room {
			return planner.Room{ID: room.ID, Name: room.Name, Capacity: room.Capacity}
		}),
		Proximity: lo.Map(proximities, func(pair models.RoomProximity, _ int) planner.ProximityPair {
			return planner.ProximityPair{A: pair.RoomAID, B: pair.RoomBID}
		}),
		Blackouts: blackouts,
		Grid:      grid,
	}, nil
}

func (s *PlannerService) toExamEvents(events []planner.Event) []models.ExamEvent {
	return lo.Map(events, func(event planner.Event, _ int) models.ExamEvent {
		row := models.ExamEvent{
			CourseID:  event.SectionID,
			RoomID:    event.RoomID,
			ExamDate:  event.Day,
			StartTime: event.Start,
			EndTime:   event.End,
		}
		if len(event.ExtraRoomNames) > 0 {
			joined := strings.Join(event.ExtraRoomNames, ", ")
			row.ExtraRooms = &joined
		}
		if event.InstructorID != "" {
			instructorID := event.InstructorID
			row.InstructorID = &instructorID
		}
		return row
	})
}

// replaceTimetable swaps the persisted timetable in one transaction so
// readers never observe a half-written plan.
func (s *PlannerService) replaceTimetable(ctx context.Context, events []models.ExamEvent) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin timetable transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.exams.DeleteAll(ctx, tx); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing timetable")
		return err
	}

	if err = s.exams.BulkCreate(ctx, tx, events); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist exam placements")
		return err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return err
	}
	return nil
}

func (s *PlannerService) observe(result string, startedAt time.Time, scheduled, unscheduled int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObservePlanRun(result, time.Since(startedAt), scheduled, unscheduled)
}
