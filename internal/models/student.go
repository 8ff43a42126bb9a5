package models

import "time"

// Student is a person identified by a scanned card credential (UID).
type Student struct {
	ID        string    `db:"id" json:"id"`
	UID       string    `db:"uid" json:"uid"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
