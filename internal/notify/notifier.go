package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"watch2give-vendor/internal/domain"
)

// Milestone notification text.
const (
	SystemSender     = "Watch2Give"
	MilestoneTitle   = "5-Day Streak Achieved!"
	milestoneMessage = MilestoneTitle + " Congratulations on your dedication!"
)

// Notifier turns streak milestones into notifications.
type Notifier struct {
	svc *Service
}

// NewNotifier creates a milestone notifier backed by svc.
func NewNotifier(svc *Service) *Notifier {
	return &Notifier{svc: svc}
}

// StreakMilestone stores and broadcasts a milestone notification. Failures
// are logged; the streak update itself has already succeeded.
func (n *Notifier) StreakMilestone(ctx context.Context, count int, at time.Time) {
	note := &domain.Notification{
		ID:        uuid.NewString(),
		Sender:    SystemSender,
		Amount:    decimal.Zero,
		USDValue:  decimal.Zero,
		Message:   milestoneMessage,
		Timestamp: at.UTC(),
	}
	if err := n.svc.publish(ctx, note); err != nil {
		n.svc.logger.WithError(err).WithField("count", count).Error("failed to record streak milestone")
	}
}
