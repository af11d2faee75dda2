package models

import "time"

// Period models an academic term containing ordered partials.
type Period struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Partials  []Partial `json:"partials,omitempty"`
}

// Partial is a grading sub-period within a period. Ordinals are unique per
// period and define the grading order.
type Partial struct {
	ID        string    `db:"id" json:"id"`
	PeriodID  string    `db:"period_id" json:"period_id"`
	Ordinal   int       `db:"ordinal" json:"ordinal"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PeriodFilter defines filters for listing periods.
type PeriodFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
