package notify

import (
	"context"
	"log/slog"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// LogSink is the fallback in-app sink used when no Redis cache is
// configured. Notifications are logged instead of delivered.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a logging notification sink.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log.With("component", "log_notification_sink")}
}

// Create logs the notification.
func (s *LogSink) Create(_ context.Context, notification models.Notification, companyID, userID string) error {
	s.log.Info("in-app notification",
		"company_id", companyID,
		"user_id", userID,
		"title", notification.Title,
		"priority", notification.Priority,
		"message", notification.Message)
	return nil
}
