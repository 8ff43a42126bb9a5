package dto

// CreateStudentRequest registers a student and their card credential.
type CreateStudentRequest struct {
	UID      string  `json:"uid" validate:"required"`
	FullName string  `json:"full_name" validate:"required"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}
