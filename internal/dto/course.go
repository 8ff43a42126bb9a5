package dto

// CreateCourseRequest creates a course with its session window.
type CreateCourseRequest struct {
	Code              string  `json:"code" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	ProfessorID       *string `json:"professor_id,omitempty"`
	StartTime         string  `json:"start_time" validate:"required,clock_time"`
	EndTime           string  `json:"end_time" validate:"required,clock_time"`
	GraceMinutes      int     `json:"grace_minutes" validate:"gte=0"`
	MinMinutesPresent int     `json:"min_minutes_present" validate:"gte=0"`
}

// UpdateCourseRequest patches course fields. Nil fields are left alone.
type UpdateCourseRequest struct {
	Name              *string `json:"name,omitempty"`
	ProfessorID       *string `json:"professor_id,omitempty"`
	StartTime         *string `json:"start_time,omitempty" validate:"omitempty,clock_time"`
	EndTime           *string `json:"end_time,omitempty" validate:"omitempty,clock_time"`
	GraceMinutes      *int    `json:"grace_minutes,omitempty" validate:"omitempty,gte=0"`
	MinMinutesPresent *int    `json:"min_minutes_present,omitempty" validate:"omitempty,gte=0"`
}

// EnrollRequest adds a student to a course roster.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}
