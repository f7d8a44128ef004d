package models

import "time"

// Room represents an exam room with fixed seating capacity.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Available bool      `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomProximity links two rooms that are close enough to host one
// overflowing exam together. The relation is symmetric and stored once
// per unordered pair.
type RoomProximity struct {
	ID      string `db:"id" json:"id"`
	RoomAID string `db:"room_a_id" json:"room_a_id"`
	RoomBID string `db:"room_b_id" json:"room_b_id"`
}
