package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
)

// RoomRepository handles persistence for exam rooms and their
// proximity relation.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new repository instance.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns all rooms ordered by capacity, largest first.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, available, created_at, updated_at FROM rooms ORDER BY capacity DESC, id ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListAvailable returns rooms the planner may use.
func (r *RoomRepository) ListAvailable(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, available, created_at, updated_at FROM rooms WHERE available = TRUE ORDER BY capacity DESC, id ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	return rooms, nil
}

// FindByID returns a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, name, capacity, available, created_at, updated_at FROM rooms WHERE id = $1 LIMIT 1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByName returns a room by its unique name.
func (r *RoomRepository) FindByName(ctx context.Context, name string) (*models.Room, error) {
	const query = `SELECT id, name, capacity, available, created_at, updated_at FROM rooms WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, name); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByName checks uniqueness of a room name.
func (r *RoomRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM rooms WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room name: %w", err)
	}
	return true, nil
}

// Create persists a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (id, name, capacity, available, created_at, updated_at) VALUES (:id, :name, :capacity, :available, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET name = :name, capacity = :capacity, available = :available, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room and its proximity links.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM room_proximities WHERE room_a_id = $1 OR room_b_id = $1`, id); err != nil {
		return fmt.Errorf("delete room proximities: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// ListProximities returns every stored proximity pair.
func (r *RoomRepository) ListProximities(ctx context.Context) ([]models.RoomProximity, error) {
	const query = `SELECT id, room_a_id, room_b_id FROM room_proximities ORDER BY room_a_id ASC, room_b_id ASC`
	var pairs []models.RoomProximity
	if err := r.db.SelectContext(ctx, &pairs, query); err != nil {
		return nil, fmt.Errorf("list room proximities: %w", err)
	}
	return pairs, nil
}

// ReplaceProximitiesForRoom swaps all proximity links touching one
// room. It participates in the ingest transaction when exec is a tx.
func (r *RoomRepository) ReplaceProximitiesForRoom(ctx context.Context, exec sqlx.ExtContext, roomID string, neighborIDs []string) error {
	target := r.exec(exec)

	if _, err := target.ExecContext(ctx, `DELETE FROM room_proximities WHERE room_a_id = $1 OR room_b_id = $1`, roomID); err != nil {
		return fmt.Errorf("clear room proximities: %w", err)
	}

	const insertQuery = `INSERT INTO room_proximities (id, room_a_id, room_b_id) VALUES ($1, $2, $3)`
	for _, neighborID := range neighborIDs {
		if neighborID == roomID {
			continue
		}
		if _, err := target.ExecContext(ctx, insertQuery, uuid.NewString(), roomID, neighborID); err != nil {
			return fmt.Errorf("insert room proximity: %w", err)
		}
	}
	return nil
}
