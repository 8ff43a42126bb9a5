package models

import "time"

// Course holds the session window configuration the status resolver reads.
// StartTime and EndTime are stored as "HH:MM" strings exactly as entered;
// the engine owns their parsing so a broken value degrades to UNKNOWN
// instead of failing the write.
type Course struct {
	ID                string    `db:"id" json:"id"`
	Code              string    `db:"code" json:"code"`
	Name              string    `db:"name" json:"name"`
	ProfessorID       *string   `db:"professor_id" json:"professor_id,omitempty"`
	StartTime         string    `db:"start_time" json:"start_time"`
	EndTime           string    `db:"end_time" json:"end_time"`
	GraceMinutes      int       `db:"grace_minutes" json:"grace_minutes"`
	MinMinutesPresent int       `db:"min_minutes_present" json:"min_minutes_present"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter scopes course listing.
type CourseFilter struct {
	ProfessorID string
	Search      string
	Page        int
	PageSize    int
}
