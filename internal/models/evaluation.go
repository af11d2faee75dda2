package models

import "time"

// EvaluationStatus tracks an evaluation through its grading lifecycle.
type EvaluationStatus string

const (
	EvaluationStatusPending    EvaluationStatus = "PENDING"
	EvaluationStatusInProgress EvaluationStatus = "IN_PROGRESS"
	EvaluationStatusDelivered  EvaluationStatus = "DELIVERED"
	EvaluationStatusClosed     EvaluationStatus = "CLOSED"
)

// ValidEvaluationStatus reports whether s is a known status.
func ValidEvaluationStatus(s EvaluationStatus) bool {
	switch s {
	case EvaluationStatusPending, EvaluationStatusInProgress, EvaluationStatusDelivered, EvaluationStatusClosed:
		return true
	}
	return false
}

// Evaluation is a gradable assignment or exam. CategoryID is nullable at the
// storage level; the aggregation engine rejects uncategorized evaluations.
type Evaluation struct {
	ID         string           `db:"id" json:"id"`
	ClassID    string           `db:"class_id" json:"class_id"`
	SectionID  *string          `db:"section_id" json:"section_id,omitempty"`
	PartialID  string           `db:"partial_id" json:"partial_id"`
	CategoryID *string          `db:"category_id" json:"category_id,omitempty"`
	Title      string           `db:"title" json:"title"`
	MaxScore   float64          `db:"max_score" json:"max_score"`
	DueDate    *time.Time       `db:"due_date" json:"due_date,omitempty"`
	Status     EvaluationStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EvaluationFilter filters evaluation listings.
type EvaluationFilter struct {
	ClassID    string
	PartialID  string
	CategoryID string
	Status     EvaluationStatus
}
