package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academica-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRosterRepositoryListEligible(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "full_name"}).
		AddRow("stu-1", "Ana Flores").
		AddRow("stu-2", "Bruno Diaz")
	mock.ExpectQuery("SELECT DISTINCT e.student_id").
		WithArgs("class-1", models.EnrollmentStatusActive).
		WillReturnRows(rows)

	roster, err := repo.ListEligible(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "stu-1", roster[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightRepositoryListByScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeightRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "partial_id", "label", "weight"}).
		AddRow("cat-1", "class-1", "p-1", "Exams", 60).
		AddRow("cat-2", "class-1", "p-1", "Tasks", 40)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, partial_id, label, weight, created_at, updated_at")).
		WithArgs("class-1", "p-1").
		WillReturnRows(rows)

	categories, err := repo.ListByScope(context.Background(), "class-1", "p-1")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, 60, categories[0].Weight)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryMapForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	rows := sqlmock.NewRows([]string{"id", "evaluation_id", "student_id", "value"}).
		AddRow("sc-1", "ev-1", "stu-1", 85.0)
	mock.ExpectQuery("SELECT id, evaluation_id, student_id, value").
		WithArgs("stu-1", "ev-1", "ev-2").
		WillReturnRows(rows)

	scores, err := repo.MapForStudent(context.Background(), "stu-1", []string{"ev-1", "ev-2"})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 85.0, scores["ev-1"].Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryMapForStudentEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	scores, err := repo.MapForStudent(context.Background(), "stu-1", nil)
	require.NoError(t, err)
	require.Empty(t, scores)
}
