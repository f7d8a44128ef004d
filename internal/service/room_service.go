package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
	ListProximities(ctx context.Context) ([]models.RoomProximity, error)
	ReplaceProximitiesForRoom(ctx context.Context, exec sqlx.ExtContext, roomID string, neighborIDs []string) error
}

// RoomRequest captures fields for creating or updating rooms.
type RoomRequest struct {
	Name      string `json:"name" validate:"required"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
	Available *bool  `json:"available,omitempty"`
}

// RoomProximityRequest replaces the proximate-room set of one room.
type RoomProximityRequest struct {
	NeighborIDs []string `json:"neighbor_ids" validate:"required"`
}

// RoomService handles exam room workflows.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService creates a new room service.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns all rooms.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Get returns a room by identifier.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create adds a new room ensuring name uniqueness.
func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	req.Name = strings.TrimSpace(req.Name)

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room name already exists")
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	room := &models.Room{Name: req.Name, Capacity: req.Capacity, Available: available}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update modifies an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room name already exists")
	}

	room.Name = req.Name
	room.Capacity = req.Capacity
	if req.Available != nil {
		room.Available = *req.Available
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room and its proximity links.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

// ListProximities returns every stored proximity pair.
func (s *RoomService) ListProximities(ctx context.Context) ([]models.RoomProximity, error) {
	pairs, err := s.repo.ListProximities(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room proximities")
	}
	return pairs, nil
}

// ReplaceProximities swaps the proximate-room set of one room after
// checking every referenced room exists.
func (s *RoomService) ReplaceProximities(ctx context.Context, roomID string, req RoomProximityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proximity payload")
	}

	if _, err := s.Get(ctx, roomID); err != nil {
		return err
	}
	for _, neighborID := range req.NeighborIDs {
		if neighborID == roomID {
			return appErrors.Clone(appErrors.ErrValidation, "a room cannot be proximate to itself")
		}
		if _, err := s.Get(ctx, neighborID); err != nil {
			return err
		}
	}

	if err := s.repo.ReplaceProximitiesForRoom(ctx, nil, roomID, req.NeighborIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace room proximities")
	}
	return nil
}
