package models

import "time"

// PlanRunResult summarizes one planning run. Unscheduled course titles
// are reported as warnings; the run still succeeds when some groups
// could not be placed.
type PlanRunResult struct {
	Success            bool      `json:"success"`
	ScheduledCount     int       `json:"scheduled_count"`
	UnscheduledCourses []string  `json:"unscheduled_courses"`
	Message            string    `json:"message,omitempty"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
}
