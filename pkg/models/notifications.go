package models

// NotificationPriority mirrors the in-app notification center's priority
// levels.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
	NotificationPriorityUrgent NotificationPriority = "URGENT"
)

// PriorityForSeverity maps an alert severity onto an in-app notification
// priority. Unknown severities fall back to MEDIUM rather than failing.
func PriorityForSeverity(severity AlertSeverity) NotificationPriority {
	switch severity {
	case AlertSeverityLow:
		return NotificationPriorityLow
	case AlertSeverityMedium:
		return NotificationPriorityMedium
	case AlertSeverityHigh:
		return NotificationPriorityHigh
	case AlertSeverityCritical:
		return NotificationPriorityUrgent
	default:
		return NotificationPriorityMedium
	}
}

// Notification is an in-app notification record submitted to the
// notification center for a single user.
type Notification struct {
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Type     string               `json:"type"`
	Priority NotificationPriority `json:"priority"`
	Data     map[string]any       `json:"data,omitempty"`
}
