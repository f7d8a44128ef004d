package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type blackoutRepository interface {
	ListForInstructor(ctx context.Context, instructorID string) ([]models.InstructorBlackout, error)
	ReplaceForInstructor(ctx context.Context, instructorID string, weekdays []int) error
}

type instructorReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// BlackoutRequest replaces the blackout weekday set of one instructor.
// Weekdays use the 0=Monday .. 6=Sunday convention.
type BlackoutRequest struct {
	Weekdays []int `json:"weekdays" validate:"required,dive,min=0,max=6"`
}

// AvailabilityService manages instructor blackout weekdays.
type AvailabilityService struct {
	repo      blackoutRepository
	users     instructorReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(repo blackoutRepository, users instructorReader, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, users: users, validator: validate, logger: logger}
}

// Blackouts returns the blackout weekdays of one instructor.
func (s *AvailabilityService) Blackouts(ctx context.Context, instructorID string) ([]models.InstructorBlackout, error) {
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	blackouts, err := s.repo.ListForInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blackouts")
	}
	return blackouts, nil
}

// ReplaceBlackouts swaps the full blackout set of one instructor.
func (s *AvailabilityService) ReplaceBlackouts(ctx context.Context, instructorID string, req BlackoutRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid blackout payload")
	}
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return err
	}

	weekdays := dedupeWeekdays(req.Weekdays)
	if err := s.repo.ReplaceForInstructor(ctx, instructorID, weekdays); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace blackouts")
	}
	return nil
}

func (s *AvailabilityService) ensureInstructor(ctx context.Context, instructorID string) error {
	user, err := s.users.FindByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if user.Role != models.RoleTeacher && user.Role != models.RoleDepartmentHead {
		return appErrors.Clone(appErrors.ErrValidation, "blackouts apply to instructor accounts only")
	}
	return nil
}

func dedupeWeekdays(weekdays []int) []int {
	seen := make(map[int]struct{}, len(weekdays))
	result := make([]int, 0, len(weekdays))
	for _, weekday := range weekdays {
		if _, ok := seen[weekday]; ok {
			continue
		}
		seen[weekday] = struct{}{}
		result = append(result, weekday)
	}
	return result
}
