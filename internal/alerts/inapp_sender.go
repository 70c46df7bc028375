package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// InAppSender delivers alerts to the in-app notification center of every
// active user in the alert's company. Per-user failures are isolated: one
// failing insert never stops the remaining recipients.
type InAppSender struct {
	directory UserDirectory
	sink      NotificationSink
	log       *slog.Logger
}

// NewInAppSender wires the user directory and notification sink
// collaborators.
func NewInAppSender(directory UserDirectory, sink NotificationSink, log *slog.Logger) *InAppSender {
	return &InAppSender{
		directory: directory,
		sink:      sink,
		log:       log.With("component", "alert_inapp_sender"),
	}
}

// Send resolves the audience for the alert's company and creates one
// notification record per user.
func (s *InAppSender) Send(ctx context.Context, notification AlertNotification) error {
	alert := notification.Alert
	userIDs, err := s.directory.ListActiveUserIDs(ctx, alert.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients for company %s: %w", alert.CompanyID, err)
	}
	if len(userIDs) == 0 {
		s.log.Debug("no active users for company, skipping in-app fanout", "company_id", alert.CompanyID)
		return nil
	}

	record := models.Notification{
		Title:    notification.Rule.Name,
		Message:  alert.Message,
		Type:     "alert",
		Priority: models.PriorityForSeverity(alert.Severity),
		Data: map[string]any{
			"alert_id":  alert.ID,
			"rule_id":   alert.RuleID,
			"severity":  string(alert.Severity),
			"metric":    alert.Metric,
			"value":     alert.Value,
			"threshold": alert.Threshold,
		},
	}

	var errs []string
	for _, userID := range userIDs {
		if err := s.sink.Create(ctx, record, alert.CompanyID, userID); err != nil {
			s.log.Warn("failed to create in-app notification",
				"company_id", alert.CompanyID, "user_id", userID, "alert_id", alert.ID, "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", userID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("in-app delivery failed for %d of %d users: %s", len(errs), len(userIDs), strings.Join(errs, "; "))
	}
	return nil
}
