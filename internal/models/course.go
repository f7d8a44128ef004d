package models

import "time"

// Course represents a course section offered in the current term.
// Sections of the same subject carry different codes but an identical
// title; the planner merges them into one exam sitting.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Title        string    `db:"title" json:"title"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	StudentCount int       `db:"student_count" json:"student_count"`
	ExamDuration int       `db:"exam_duration" json:"exam_duration"`
	HasExam      bool      `db:"has_exam" json:"has_exam"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	DepartmentID string
	InstructorID string
	HasExam      *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// CourseStudent is one roster entry linking a student number to a course.
type CourseStudent struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	StudentNo   string `db:"student_no" json:"student_no"`
	StudentName string `db:"student_name" json:"student_name"`
}
