package models

import "time"

// ProjectStatus tracks a project's lifecycle.
type ProjectStatus string

const (
	ProjectStatusOpen   ProjectStatus = "OPEN"
	ProjectStatusClosed ProjectStatus = "CLOSED"
)

// GroupingState is the assignment state machine for a class+project.
type GroupingState string

const (
	GroupingStateNone     GroupingState = "NO_GROUPING"
	GroupingStateDrawn    GroupingState = "DRAWN"
	GroupingStateAdjusted GroupingState = "MANUALLY_ADJUSTED"
)

// Project is class work that students complete in groups.
type Project struct {
	ID            string        `db:"id" json:"id"`
	ClassID       string        `db:"class_id" json:"class_id"`
	Name          string        `db:"name" json:"name"`
	DueDate       *time.Time    `db:"due_date" json:"due_date,omitempty"`
	Status        ProjectStatus `db:"status" json:"status"`
	RandomAssign  bool          `db:"random_assign" json:"random_assign"`
	GroupSize     int           `db:"group_size" json:"group_size"`
	GroupingState GroupingState `db:"grouping_state" json:"grouping_state"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Group is one project team. A project has at most one active grouping; a
// re-draw replaces all groups wholesale.
type Group struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	Number    int       `db:"number" json:"number"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupMember is the persistence row linking a student to a group.
type GroupMember struct {
	GroupID   string `db:"group_id" json:"group_id"`
	StudentID string `db:"student_id" json:"student_id"`
}
