package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academica-api/internal/models"
)

// GroupRepository persists project groups and their memberships.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ListByProject returns the project's groups with member lists.
func (r *GroupRepository) ListByProject(ctx context.Context, projectID string) ([]models.Group, error) {
	const query = `SELECT id, project_id, number, created_at FROM groups WHERE project_id = $1 ORDER BY number`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, projectID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	for i := range groups {
		members, err := r.loadMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

// FindByID returns a single group with members.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, project_id, number, created_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return &group, nil
}

// ReplaceForProject swaps the project's grouping in a single transaction:
// old groups and memberships are deleted and the new ones inserted, so a
// reader never observes a mix of old and new groups.
func (r *GroupRepository) ReplaceForProject(ctx context.Context, projectID string, groups []models.Group) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id IN (SELECT id FROM groups WHERE project_id = $1)", projectID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete old memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE project_id = $1", projectID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete old groups: %w", err)
	}
	now := time.Now().UTC()
	for i := range groups {
		if groups[i].ID == "" {
			groups[i].ID = uuid.NewString()
		}
		groups[i].ProjectID = projectID
		groups[i].CreatedAt = now
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, project_id, number, created_at) VALUES ($1, $2, $3, $4)",
			groups[i].ID, projectID, groups[i].Number, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert group: %w", err)
		}
		for _, studentID := range groups[i].Members {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO group_members (group_id, student_id) VALUES ($1, $2)",
				groups[i].ID, studentID); err != nil {
				tx.Rollback() //nolint:errcheck
				return fmt.Errorf("insert group member: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grouping swap: %w", err)
	}
	return nil
}

// ReplaceMembers rewrites the membership of exactly one group.
func (r *GroupRepository) ReplaceMembers(ctx context.Context, groupID string, studentIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = $1", groupID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete memberships: %w", err)
	}
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, student_id) VALUES ($1, $2)", groupID, studentID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert membership: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership swap: %w", err)
	}
	return nil
}

func (r *GroupRepository) loadMembers(ctx context.Context, groupID string) ([]string, error) {
	const query = `SELECT student_id FROM group_members WHERE group_id = $1 ORDER BY student_id`
	var members []string
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("load group members: %w", err)
	}
	return members, nil
}
