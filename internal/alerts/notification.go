package alerts

import (
	"context"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// AlertNotification is the fully resolved payload handed to channel senders.
type AlertNotification struct {
	Alert     models.Alert
	Rule      models.AlertRule
	Timestamp time.Time
	Source    string
}

// AlertSender abstracts one delivery channel. Implementations isolate
// per-recipient failures internally and report a combined error; the fanout
// only logs it.
type AlertSender interface {
	Send(ctx context.Context, notification AlertNotification) error
}

// UserDirectory resolves the in-app notification audience for a tenant. The
// product's user service sits behind this interface.
type UserDirectory interface {
	ListActiveUserIDs(ctx context.Context, companyID string) ([]string, error)
}

// NotificationSink accepts in-app notification records, one call per user.
// Each call fails independently.
type NotificationSink interface {
	Create(ctx context.Context, notification models.Notification, companyID, userID string) error
}
