package models

import "time"

// AttendanceRecord is one finalized day for one enrollment. Records are
// immutable once written; re-finalizing the same date replaces the row, and
// a UNIQUE (enrollment_id, date) index makes at-most-one-per-date
// structural rather than enforced by scanning.
type AttendanceRecord struct {
	ID              string    `db:"id" json:"id"`
	EnrollmentID    string    `db:"enrollment_id" json:"enrollment_id"`
	Date            string    `db:"date" json:"date"`
	Status          Status    `db:"status" json:"status"`
	OverrideStatus  *Status   `db:"override_status" json:"override_status,omitempty"`
	LastArrival     *string   `db:"last_arrival" json:"last_arrival,omitempty"`
	LastLeave       *string   `db:"last_leave" json:"last_leave,omitempty"`
	DurationSeconds int64     `db:"duration_seconds" json:"duration_seconds"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// EffectiveStatus returns the recorded outcome with the override, when one
// was captured at finalize time, taking precedence.
func (r AttendanceRecord) EffectiveStatus() Status {
	if r.OverrideStatus != nil && *r.OverrideStatus != "" {
		return *r.OverrideStatus
	}
	if r.Status != "" {
		return r.Status
	}
	return StatusUnknown
}

// DateKey formats a calendar date the way record dates are keyed.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Summary is the attended/total ratio for one student.
type Summary struct {
	Attended int     `json:"attended"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// ClassSummary aggregates attended/total across a roster. Sessions are
// summed before dividing, so students with more finalized days weigh more.
type ClassSummary struct {
	TotalAttended int     `json:"total_attended"`
	TotalSessions int     `json:"total_sessions"`
	Percent       float64 `json:"percent"`
}
