package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/sirupsen/logrus"
)

type GoalSubmitted struct {
	GoalID     uuid.UUID
	GoalTitle  string
	OwnerID    uuid.UUID
	ReviewerID uuid.UUID
}

type GoalReviewed struct {
	GoalID     uuid.UUID
	GoalTitle  string
	OwnerID    uuid.UUID
	ReviewerID uuid.UUID
	Action     string
	Feedback   string
}

// Notifier delivers workflow events to people. Delivery failures are the
// caller's to log; they never undo the transition that caused them.
type Notifier interface {
	GoalSubmitted(ctx context.Context, evt GoalSubmitted) error
	GoalReviewed(ctx context.Context, evt GoalReviewed) error
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that records events in the structured
// log, for deployments without a delivery channel.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) GoalSubmitted(ctx context.Context, evt GoalSubmitted) error {
	config.WithContext(ctx).WithFields(logrus.Fields{
		"event":       "goal_submitted",
		"goal_id":     evt.GoalID,
		"owner_id":    evt.OwnerID,
		"reviewer_id": evt.ReviewerID,
	}).Infof("Goal %q submitted for review", evt.GoalTitle)
	return nil
}

func (logNotifier) GoalReviewed(ctx context.Context, evt GoalReviewed) error {
	config.WithContext(ctx).WithFields(logrus.Fields{
		"event":       "goal_reviewed",
		"goal_id":     evt.GoalID,
		"owner_id":    evt.OwnerID,
		"reviewer_id": evt.ReviewerID,
		"action":      evt.Action,
	}).Infof("Goal %q reviewed", evt.GoalTitle)
	return nil
}
