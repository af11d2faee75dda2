package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academica-api/internal/models"
)

func TestGroupRepositoryReplaceForProjectSwapsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM group_members WHERE group_id IN").
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM groups WHERE project_id").
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO groups").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO group_members").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO group_members").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	groups := []models.Group{{Number: 1, Members: []string{"stu-1", "stu-2"}}}
	err := repo.ReplaceForProject(context.Background(), "proj-1", groups)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryReplaceForProjectRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM group_members WHERE group_id IN").
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM groups WHERE project_id").
		WithArgs("proj-1").
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := repo.ReplaceForProject(context.Background(), "proj-1", []models.Group{{Number: 1}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryReplaceMembers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM group_members WHERE group_id").
		WithArgs("grp-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO group_members").
		WithArgs("grp-1", "stu-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceMembers(context.Background(), "grp-1", []string{"stu-3"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryDeleteCascade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM scores WHERE evaluation_id").
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM evaluations WHERE id").
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteCascade(context.Background(), "ev-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
