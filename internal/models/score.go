package models

import "time"

// Score is one student's recorded result for one evaluation. Unique per
// (evaluation, student); absence means "not yet graded", which is distinct
// from a recorded 0.
type Score struct {
	ID           string    `db:"id" json:"id"`
	EvaluationID string    `db:"evaluation_id" json:"evaluation_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Value        float64   `db:"value" json:"value"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
