package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type rosterRepoStub struct {
	students []models.RosterStudent
	err      error
}

func (s rosterRepoStub) ListEligible(ctx context.Context, classID string) ([]models.RosterStudent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.students, nil
}

func TestRosterServiceResolveEligible(t *testing.T) {
	service := NewRosterService(rosterRepoStub{students: []models.RosterStudent{
		{StudentID: "stu-1", FullName: "Ana Pérez"},
		{StudentID: "stu-2", FullName: "Luis Gómez"},
	}}, nil)

	roster, err := service.ResolveEligible(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Len(t, roster, 2)
}

func TestRosterServiceResolveEligibleDeduplicates(t *testing.T) {
	service := NewRosterService(rosterRepoStub{students: []models.RosterStudent{
		{StudentID: "stu-1", FullName: "Ana Pérez"},
		{StudentID: "stu-1", FullName: "Ana Pérez"},
		{StudentID: "stu-2", FullName: "Luis Gómez"},
	}}, nil)

	roster, err := service.ResolveEligible(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Len(t, roster, 2)
}

func TestRosterServiceResolveEligibleEmpty(t *testing.T) {
	service := NewRosterService(rosterRepoStub{}, nil)

	_, err := service.ResolveEligible(context.Background(), "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyRoster.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceResolveEligibleRepoError(t *testing.T) {
	service := NewRosterService(rosterRepoStub{err: errors.New("connection reset")}, nil)

	_, err := service.ResolveEligible(context.Background(), "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
