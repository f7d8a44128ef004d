package models

import "time"

// InstructorBlackout marks a weekday (0=Monday .. 6=Sunday) on which an
// instructor must not be scheduled for any exam.
type InstructorBlackout struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Weekday      int       `db:"weekday" json:"weekday"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
