package dto

// TapEventRequest is the payload posted by the card-reader bridge. The
// timestamp is kept as the raw string the reader sent; parsing belongs to
// the status engine, not the ingestion boundary.
type TapEventRequest struct {
	CourseID     string `json:"course_id" validate:"required"`
	UID          string `json:"uid" validate:"required"`
	Event        string `json:"event" validate:"required,oneof=arrival exit"`
	Timestamp    string `json:"timestamp" validate:"required"`
	TotalSeconds *int64 `json:"total_seconds,omitempty"`
}

// TapEventResponse acknowledges an accepted tap.
type TapEventResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	StudentName  string `json:"student_name"`
	Event        string `json:"event"`
	Timestamp    string `json:"timestamp"`
}
