package service

import (
	"context"
	cryptorand "crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/internal/models"
	"github.com/noah-isme/academica-api/pkg/config"
	appErrors "github.com/noah-isme/academica-api/pkg/errors"
	"github.com/noah-isme/academica-api/pkg/lock"
)

type projectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	SetGroupingState(ctx context.Context, id string, state models.GroupingState) error
}

type groupRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Group, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ReplaceForProject(ctx context.Context, projectID string, groups []models.Group) error
	ReplaceMembers(ctx context.Context, groupID string, studentIDs []string) error
}

type rosterResolver interface {
	ResolveEligible(ctx context.Context, classID string) ([]models.RosterStudent, error)
}

type drawNotifier interface {
	GroupsDrawn(projectID string, groupCount int)
}

// CapacityResult reports whether a class roster supports a group size.
type CapacityResult struct {
	ClassID    string `json:"class_id"`
	GroupSize  int    `json:"group_size"`
	RosterSize int    `json:"roster_size"`
	MaxGroups  int    `json:"max_groups"`
	Remainder  int    `json:"remainder"`
	OK         bool   `json:"ok"`
}

// DrawGroupsRequest is the payload for a random draw.
type DrawGroupsRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	GroupSize int    `json:"group_size" validate:"required,gt=0"`
	// Seed makes the shuffle reproducible; production callers omit it.
	Seed *int64 `json:"seed,omitempty"`
}

// AssignManuallyRequest replaces one group's membership.
type AssignManuallyRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
}

// AssignmentService partitions class rosters into project groups.
type AssignmentService struct {
	projects  projectRepo
	groups    groupRepo
	roster    rosterResolver
	locks     lock.Locker
	notifier  drawNotifier
	validator *validator.Validate
	logger    *zap.Logger

	remainderPolicy string
	lockTTL         time.Duration
}

// NewAssignmentService constructs the engine. remainderPolicy is
// config.RemainderRedistribute or config.RemainderUneven.
func NewAssignmentService(projects projectRepo, groups groupRepo, roster rosterResolver, locks lock.Locker, notifier drawNotifier, cfg config.AssignmentConfig, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.RemainderPolicy
	if policy != config.RemainderUneven {
		policy = config.RemainderRedistribute
	}
	ttl := cfg.DrawLockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AssignmentService{
		projects:        projects,
		groups:          groups,
		roster:          roster,
		locks:           locks,
		notifier:        notifier,
		validator:       validate,
		logger:          logger,
		remainderPolicy: policy,
		lockTTL:         ttl,
	}
}

// ValidateCapacity reports how a class roster partitions at groupSize. A
// non-zero remainder is informational, not fatal.
func (s *AssignmentService) ValidateCapacity(ctx context.Context, classID string, groupSize int) (*CapacityResult, error) {
	if groupSize < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group size must be at least 1")
	}
	roster, err := s.roster.ResolveEligible(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(roster) < groupSize {
		return nil, appErrors.Clone(appErrors.ErrInsufficientStudents,
			fmt.Sprintf("roster has %d students, group size is %d", len(roster), groupSize))
	}
	return &CapacityResult{
		ClassID:    classID,
		GroupSize:  groupSize,
		RosterSize: len(roster),
		MaxGroups:  len(roster) / groupSize,
		Remainder:  len(roster) % groupSize,
		OK:         true,
	}, nil
}

// DrawGroups shuffles the roster and replaces the project's grouping
// atomically. The same seed over an unchanged roster reproduces the same
// partition, so a caller can safely retry after a transport failure.
func (s *AssignmentService) DrawGroups(ctx context.Context, req DrawGroupsRequest) ([]models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draw payload")
	}
	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project.ClassID != req.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "project does not belong to class")
	}

	roster, err := s.roster.ResolveEligible(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if len(roster) < req.GroupSize {
		return nil, appErrors.Clone(appErrors.ErrInsufficientStudents,
			fmt.Sprintf("roster has %d students, group size is %d", len(roster), req.GroupSize))
	}

	release, err := s.locks.Acquire(ctx, drawLockKey(req.ClassID, req.ProjectID), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, appErrors.Clone(appErrors.ErrDrawInProgress, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire draw lock")
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Sugar().Warnw("failed to release draw lock", "class_id", req.ClassID, "project_id", req.ProjectID, "error", err)
		}
	}()

	ids := make([]string, len(roster))
	for i, student := range roster {
		ids[i] = student.StudentID
	}
	shuffle(ids, req.Seed)
	groups := partition(ids, req.GroupSize, s.remainderPolicy)
	for i := range groups {
		groups[i].ProjectID = req.ProjectID
		groups[i].Number = i + 1
	}

	if err := s.groups.ReplaceForProject(ctx, req.ProjectID, groups); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace grouping")
	}
	if err := s.projects.SetGroupingState(ctx, req.ProjectID, models.GroupingStateDrawn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project state")
	}
	if s.notifier != nil {
		s.notifier.GroupsDrawn(req.ProjectID, len(groups))
	}
	s.logger.Sugar().Infow("groups drawn", "class_id", req.ClassID, "project_id", req.ProjectID, "groups", len(groups), "students", len(ids))
	return groups, nil
}

// AssignManually replaces the membership of exactly one group. Other groups
// under the project are untouched.
func (s *AssignmentService) AssignManually(ctx context.Context, groupID string, req AssignManuallyRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	project, err := s.projects.FindByID(ctx, group.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}

	seen := make(map[string]struct{}, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		if _, ok := seen[studentID]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s listed twice", studentID))
		}
		seen[studentID] = struct{}{}
	}

	roster, err := s.roster.ResolveEligible(ctx, project.ClassID)
	if err != nil {
		return nil, err
	}
	eligible := make(map[string]struct{}, len(roster))
	for _, student := range roster {
		eligible[student.StudentID] = struct{}{}
	}
	for _, studentID := range req.StudentIDs {
		if _, ok := eligible[studentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrStudentNotEligible, fmt.Sprintf("student %s not in class roster", studentID))
		}
	}

	siblings, err := s.groups.ListByProject(ctx, group.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project groups")
	}
	for _, sibling := range siblings {
		if sibling.ID == groupID {
			continue
		}
		for _, member := range sibling.Members {
			if _, ok := seen[member]; ok {
				return nil, appErrors.Clone(appErrors.ErrDuplicateAssignment,
					fmt.Sprintf("student %s already in group %d", member, sibling.Number))
			}
		}
	}

	if err := s.groups.ReplaceMembers(ctx, groupID, req.StudentIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace members")
	}
	if err := s.projects.SetGroupingState(ctx, group.ProjectID, models.GroupingStateAdjusted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project state")
	}
	group.Members = req.StudentIDs
	return group, nil
}

func drawLockKey(classID, projectID string) string {
	return classID + ":" + projectID
}

// shuffle applies Fisher-Yates over ids. A supplied seed makes the
// permutation fully deterministic; otherwise the generator is seeded from
// crypto/rand.
func shuffle(ids []string, seed *int64) {
	var src rand.Source
	if seed != nil {
		src = rand.NewSource(*seed)
	} else {
		var buf [8]byte
		if _, err := cryptorand.Read(buf[:]); err == nil {
			src = rand.NewSource(int64(binary.LittleEndian.Uint64(buf[:])))
		} else {
			src = rand.NewSource(time.Now().UnixNano())
		}
	}
	rng := rand.New(src)
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// partition chunks the shuffled ids into groups of size. Under the
// redistribute policy the leftover students are dealt round-robin into the
// full groups so no group exceeds another by more than one member; under the
// uneven policy they form a smaller trailing group.
func partition(ids []string, size int, policy string) []models.Group {
	full := len(ids) / size
	remainder := len(ids) % size

	groups := make([]models.Group, 0, full+1)
	for i := 0; i < full; i++ {
		chunk := ids[i*size : (i+1)*size]
		members := make([]string, len(chunk))
		copy(members, chunk)
		groups = append(groups, models.Group{Members: members})
	}
	if remainder == 0 {
		return groups
	}
	leftover := ids[full*size:]
	if policy == config.RemainderUneven {
		members := make([]string, len(leftover))
		copy(members, leftover)
		groups = append(groups, models.Group{Members: members})
		return groups
	}
	for i, studentID := range leftover {
		target := i % len(groups)
		groups[target].Members = append(groups[target].Members, studentID)
	}
	return groups
}
