package models

import "time"

// Alert is a single trigger of a rule against one metric series. Alerts stay
// in memory for the lifetime of the process; resolution sets a field, it does
// not remove the alert.
type Alert struct {
	ID             string            `json:"id"`
	RuleID         string            `json:"rule_id"`
	Severity       AlertSeverity     `json:"severity"`
	Message        string            `json:"message"`
	Metric         string            `json:"metric"`
	Value          float64           `json:"value"`
	Threshold      float64           `json:"threshold"`
	Labels         map[string]string `json:"labels,omitempty"`
	CompanyID      string            `json:"company_id"`
	TriggeredAt    time.Time         `json:"triggered_at"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string            `json:"acknowledged_by,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
}

// Acknowledged reports whether the alert has been acknowledged.
func (a *Alert) Acknowledged() bool { return a.AcknowledgedAt != nil }

// Resolved reports whether the alert has been resolved. Acknowledgement and
// resolution are independent flags; an alert may resolve without ever being
// acknowledged.
func (a *Alert) Resolved() bool { return a.ResolvedAt != nil }

// AcknowledgeAlertRequest carries the acknowledging user for an alert.
type AcknowledgeAlertRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
