package models

import "time"

// Enrollment ties a student to a course and carries the live per-session
// state written by the card-reader bridge. LastArrival and LastLeave hold
// only the most recent tap pair of the current, unfinalized day, stored as
// the raw "YYYY-MM-DD HH:MM[:SS]" strings the reader sent.
type Enrollment struct {
	ID             string    `db:"id" json:"id"`
	CourseID       string    `db:"course_id" json:"course_id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	LastArrival    *string   `db:"last_arrival" json:"last_arrival,omitempty"`
	LastLeave      *string   `db:"last_leave" json:"last_leave,omitempty"`
	TotalSeconds   int64     `db:"total_seconds" json:"total_seconds"`
	Status         *Status   `db:"status" json:"status,omitempty"`
	OverrideStatus *Status   `db:"override_status" json:"override_status,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Arrival returns the last arrival timestamp or the empty string.
func (e Enrollment) Arrival() string {
	if e.LastArrival == nil {
		return ""
	}
	return *e.LastArrival
}

// Leave returns the last leave timestamp or the empty string.
func (e Enrollment) Leave() string {
	if e.LastLeave == nil {
		return ""
	}
	return *e.LastLeave
}

// EnrollmentDetail enriches the live state with student identity for
// roster and report views.
type EnrollmentDetail struct {
	Enrollment
	StudentUID  string `db:"student_uid" json:"student_uid"`
	StudentName string `db:"student_name" json:"student_name"`
}
