package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type examReader interface {
	ListDetailed(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheOperationRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// ScheduleService serves the exam timetable scoped to the viewer's
// role. Admins and department heads see the whole plan, instructors
// their own sections, students the exams their number is enrolled in.
type ScheduleService struct {
	exams   examReader
	cache   timetableCache
	metrics cacheOperationRecorder
	logger  *zap.Logger
	ttl     time.Duration
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(exams examReader, cache timetableCache, metrics cacheOperationRecorder, logger *zap.Logger, ttl time.Duration) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScheduleService{exams: exams, cache: cache, metrics: metrics, logger: logger, ttl: ttl}
}

// Timetable returns the exam list visible to the authenticated viewer.
func (s *ScheduleService) Timetable(ctx context.Context, claims *models.JWTClaims) ([]models.ExamDetail, error) {
	filter, err := FilterForViewer(claims)
	if err != nil {
		return nil, err
	}

	key := cacheKeyForFilter(filter)
	if s.cache != nil {
		started := time.Now()
		var cached []models.ExamDetail
		cacheErr := s.cache.Get(ctx, key, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(cacheErr == nil, time.Since(started))
		}
		if cacheErr == nil {
			return cached, nil
		}
		if !errors.Is(cacheErr, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.Error(cacheErr))
		}
	}

	details, err := s.exams.ListDetailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, details, s.ttl); err != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(err))
		}
	}

	return details, nil
}

// FilterForViewer derives the timetable scope from token claims.
func FilterForViewer(claims *models.JWTClaims) (models.ExamFilter, error) {
	if claims == nil {
		return models.ExamFilter{}, appErrors.Clone(appErrors.ErrUnauthorized, "missing identity")
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleDepartmentHead:
		return models.ExamFilter{}, nil
	case models.RoleTeacher:
		return models.ExamFilter{InstructorID: claims.UserID}, nil
	case models.RoleStudent:
		if claims.StudentNo == "" {
			return models.ExamFilter{}, appErrors.Clone(appErrors.ErrForbidden, "student account has no student number")
		}
		return models.ExamFilter{StudentNo: claims.StudentNo}, nil
	default:
		return models.ExamFilter{}, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
}

func cacheKeyForFilter(filter models.ExamFilter) string {
	switch {
	case filter.InstructorID != "":
		return fmt.Sprintf("timetable:instructor:%s", filter.InstructorID)
	case filter.StudentNo != "":
		return fmt.Sprintf("timetable:student:%s", filter.StudentNo)
	default:
		return "timetable:all"
	}
}
