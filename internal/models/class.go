package models

import "time"

// Class represents an academic class: the scope for weight structures and
// group assignment.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	WeekDays  string    `db:"week_days" json:"week_days"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Section is a scheduled subdivision of a class. Several sections of the same
// class may enroll the same student; the roster de-duplicates them.
type Section struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
