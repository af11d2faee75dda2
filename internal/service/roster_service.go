package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
)

type rosterRepo interface {
	ListEligible(ctx context.Context, classID string) ([]models.RosterStudent, error)
}

// RosterService resolves the eligible student pool the assignment engine
// draws from.
type RosterService struct {
	roster rosterRepo
	logger *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(roster rosterRepo, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{roster: roster, logger: logger}
}

// ResolveEligible returns the ordered, de-duplicated set of active students
// for a class. The repository query collapses duplicate enrollments across
// sections; the guard here is against a backing store without that guarantee.
func (s *RosterService) ResolveEligible(ctx context.Context, classID string) ([]models.RosterStudent, error) {
	roster, err := s.roster.ListEligible(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve roster")
	}
	seen := make(map[string]struct{}, len(roster))
	unique := roster[:0]
	for _, student := range roster {
		if _, ok := seen[student.StudentID]; ok {
			continue
		}
		seen[student.StudentID] = struct{}{}
		unique = append(unique, student)
	}
	if len(unique) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyRoster, "")
	}
	return unique, nil
}
