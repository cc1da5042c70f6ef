// Package notification defines the sink interface triggered alerts are
// delivered through. An explicit injected sink replaces global analytics
// calls, so delivery targets (email, push, webhooks) can be added without
// touching alert evaluation.
package notification

import (
	"context"

	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/models"
)

// Notifier delivers triggered alerts to the user.
type Notifier interface {
	Notify(ctx context.Context, userID string, fired models.TriggeredAlert) error
}

// LogNotifier writes triggered alerts to the structured log. It is the
// default sink in development and a safe fallback in production.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, userID string, fired models.TriggeredAlert) error {
	logger.Ctx(ctx).Info("alert triggered",
		logger.String("user_id", userID),
		logger.String("alert_id", fired.Alert.ID),
		logger.String("alert_type", fired.Alert.Type),
		logger.String("message", fired.Message),
		logger.Float64("value", fired.Value),
	)
	return nil
}
