package models

import "time"

// EnrollmentStatus represents the lifecycle of a student's class membership.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusInactive  EnrollmentStatus = "INACTIVE"
)

// Student is owned by the enrollment subsystem and referenced here, never
// duplicated.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Enrollment links a student to a class section.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SectionID string           `db:"section_id" json:"section_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
}

// RosterStudent is one eligible student in a class roster.
type RosterStudent struct {
	StudentID string `db:"student_id" json:"student_id"`
	FullName  string `db:"full_name" json:"full_name"`
}
