package models

import "time"

// ExamEvent is one persisted exam placement. A merged scheduling group
// produces one row per member course section, all sharing identical
// date, times and rooms.
type ExamEvent struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	ExtraRooms   *string   `db:"extra_rooms" json:"extra_rooms,omitempty"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	ExamDate     time.Time `db:"exam_date" json:"exam_date"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ExamDetail joins an exam event with display names for views and exports.
type ExamDetail struct {
	ID             string    `db:"id" json:"id"`
	CourseCode     string    `db:"course_code" json:"course_code"`
	CourseTitle    string    `db:"course_title" json:"course_title"`
	StudentCount   int       `db:"student_count" json:"student_count"`
	RoomName       string    `db:"room_name" json:"room_name"`
	ExtraRooms     *string   `db:"extra_rooms" json:"extra_rooms,omitempty"`
	InstructorName *string   `db:"instructor_name" json:"instructor_name,omitempty"`
	ExamDate       time.Time `db:"exam_date" json:"exam_date"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
}

// ExamFilter scopes timetable queries to a viewer.
type ExamFilter struct {
	InstructorID string
	StudentNo    string
}
