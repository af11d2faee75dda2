package service

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academica-api/pkg/jobs"
)

// Event kinds published by the engines.
const (
	EventGroupsDrawn    = "groups.drawn"
	EventScoresRecorded = "scores.recorded"
)

type eventPublisher interface {
	Publish(event jobs.Event) error
}

// NotificationService translates domain occurrences into queue events. When
// the queue is nil (notifications disabled) every call is a no-op.
type NotificationService struct {
	queue  eventPublisher
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(queue eventPublisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, logger: logger}
}

// GroupsDrawn announces a completed random draw.
func (s *NotificationService) GroupsDrawn(projectID string, groupCount int) {
	s.publish(EventGroupsDrawn, map[string]string{
		"project_id": projectID,
		"groups":     strconv.Itoa(groupCount),
	})
}

// ScoresRecorded announces graded scores for an evaluation.
func (s *NotificationService) ScoresRecorded(evaluationID string, count int) {
	s.publish(EventScoresRecorded, map[string]string{
		"evaluation_id": evaluationID,
		"scores":        strconv.Itoa(count),
	})
}

func (s *NotificationService) publish(kind string, payload map[string]string) {
	if s.queue == nil {
		return
	}
	event := jobs.Event{ID: uuid.NewString(), Kind: kind, Payload: payload}
	if err := s.queue.Publish(event); err != nil {
		s.logger.Sugar().Warnw("failed to publish notification", "kind", kind, "error", err)
	}
}
