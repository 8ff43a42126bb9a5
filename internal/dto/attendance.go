package dto

import "github.com/noah-isme/classtap-api/internal/models"

// OverrideRequest sets or clears a manual status. An empty status clears.
type OverrideRequest struct {
	Status string `json:"status" validate:"omitempty,attendance_status"`
}

// FinalizeRequest optionally names the calendar date to finalize.
// Empty means today.
type FinalizeRequest struct {
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// StudentStatusResponse is one roster row in the live attendance view.
type StudentStatusResponse struct {
	EnrollmentID    string         `json:"enrollment_id"`
	StudentID       string         `json:"student_id"`
	StudentUID      string         `json:"student_uid"`
	StudentName     string         `json:"student_name"`
	LastArrival     *string        `json:"last_arrival,omitempty"`
	LastLeave       *string        `json:"last_leave,omitempty"`
	AutomaticStatus models.Status  `json:"automatic_status"`
	OverrideStatus  *models.Status `json:"override_status,omitempty"`
	EffectiveStatus models.Status  `json:"effective_status"`
	Summary         models.Summary `json:"summary"`
}

// CourseAttendanceResponse is the professor (or student) course view.
type CourseAttendanceResponse struct {
	CourseID string                  `json:"course_id"`
	Mode     models.EvaluationMode   `json:"mode"`
	Date     string                  `json:"date"`
	Students []StudentStatusResponse `json:"students"`
}

// ClassSummaryResponse wraps the weighted class percentage.
type ClassSummaryResponse struct {
	CourseID string              `json:"course_id"`
	Summary  models.ClassSummary `json:"summary"`
}

// HistoryResponse is one student's finalized record list plus their ratio.
type HistoryResponse struct {
	EnrollmentID string                    `json:"enrollment_id"`
	StudentID    string                    `json:"student_id"`
	Records      []models.AttendanceRecord `json:"records"`
	Summary      models.Summary            `json:"summary"`
}

// FinalizeResponse reports how many records a finalize call wrote.
type FinalizeResponse struct {
	CourseID string `json:"course_id"`
	Date     string `json:"date"`
	Recorded int    `json:"recorded"`
}
