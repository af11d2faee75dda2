package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academica-api/internal/models"
)

// RosterRepository resolves class rosters from the enrollment tables.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository creates a new roster repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListEligible returns the distinct active students across every section of
// the class, ordered by student id. DISTINCT collapses students enrolled in
// more than one section.
func (r *RosterRepository) ListEligible(ctx context.Context, classID string) ([]models.RosterStudent, error) {
	const query = `SELECT DISTINCT e.student_id, s.first_name || ' ' || s.last_name AS full_name
        FROM enrollments e
        JOIN sections sec ON sec.id = e.section_id
        JOIN students s ON s.id = e.student_id
        WHERE sec.class_id = $1 AND e.status = $2
        ORDER BY e.student_id`
	var roster []models.RosterStudent
	if err := r.db.SelectContext(ctx, &roster, query, classID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list eligible roster: %w", err)
	}
	return roster, nil
}
