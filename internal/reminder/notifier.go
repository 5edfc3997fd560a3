package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultChannel groups purchase reminders on the receiving side.
const DefaultChannel = "purchases_channel"

// Notification is a content-agnostic reminder. It carries no purchase data.
type Notification struct {
	ID        string
	Channel   string
	Title     string
	Body      string
	CreatedAt time.Time
}

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, notification Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, notification Notification) error {
	return f(ctx, notification)
}

// LogNotifier posts notifications to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier; a nil logger discards notifications.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify writes the notification at info level.
func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	n.logger.Info("reminder notification",
		zap.String("notification_id", notification.ID),
		zap.String("channel", notification.Channel),
		zap.String("title", notification.Title),
		zap.String("body", notification.Body),
		zap.Time("created_at", notification.CreatedAt))
	return nil
}
