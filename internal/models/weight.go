package models

import "time"

// WeightCategory is one percentage-weighted slot of a class+partial grading
// scheme. Weights are integer percentages so the sum-to-100 check is exact.
type WeightCategory struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	PartialID string    `db:"partial_id" json:"partial_id"`
	Label     string    `db:"label" json:"label"`
	Weight    int       `db:"weight" json:"weight"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WeightStructure is the full set of categories for one (class, partial).
type WeightStructure struct {
	ClassID    string           `json:"class_id"`
	PartialID  string           `json:"partial_id"`
	Categories []WeightCategory `json:"categories"`
}

// TotalWeight sums the integer category weights.
func (s WeightStructure) TotalWeight() int {
	total := 0
	for _, category := range s.Categories {
		total += category.Weight
	}
	return total
}

// StructureValidation reports the outcome of validating a weight structure.
type StructureValidation struct {
	ClassID   string `json:"class_id"`
	PartialID string `json:"partial_id"`
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"`
	Total     int    `json:"total_weight"`
}
