package models

import "time"

// RuleCondition is the comparison applied between a metric value and the
// rule threshold.
type RuleCondition string

const (
	ConditionGreaterThan        RuleCondition = "gt"
	ConditionLessThan           RuleCondition = "lt"
	ConditionEqual              RuleCondition = "eq"
	ConditionGreaterThanOrEqual RuleCondition = "gte"
	ConditionLessThanOrEqual    RuleCondition = "lte"
)

// AlertSeverity is a lightweight severity indicator for routing and display.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertChannelType enumerates supported outbound notification channels.
type AlertChannelType string

const (
	AlertChannelEmail   AlertChannelType = "email"
	AlertChannelInApp   AlertChannelType = "in_app"
	AlertChannelWebhook AlertChannelType = "webhook"
)

// AlertRule describes a threshold check evaluated against matching metric
// series on every evaluation tick.
type AlertRule struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	Metric          string             `json:"metric"`
	Condition       RuleCondition      `json:"condition"`
	Threshold       float64            `json:"threshold"`
	Severity        AlertSeverity      `json:"severity"`
	Enabled         bool               `json:"enabled"`
	CooldownMinutes int                `json:"cooldown_minutes"`
	Channels        []AlertChannelType `json:"channels"`
	Recipients      []string           `json:"recipients,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CooldownDuration converts the configured cooldown to a time.Duration.
func (r *AlertRule) CooldownDuration() time.Duration {
	if r.CooldownMinutes <= 0 {
		return 0
	}
	return time.Duration(r.CooldownMinutes) * time.Minute
}

// HasChannel reports whether the rule routes notifications to the given channel.
func (r *AlertRule) HasChannel(ch AlertChannelType) bool {
	for _, c := range r.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// CreateRuleRequest defines the payload required to register a new alert rule.
type CreateRuleRequest struct {
	ID              string             `json:"id"`
	Name            string             `json:"name" validate:"required"`
	Description     string             `json:"description"`
	Metric          string             `json:"metric" validate:"required"`
	Condition       RuleCondition      `json:"condition" validate:"required,oneof=gt lt eq gte lte"`
	Threshold       float64            `json:"threshold"`
	Severity        AlertSeverity      `json:"severity" validate:"required,oneof=low medium high critical"`
	Enabled         *bool              `json:"enabled"`
	CooldownMinutes int                `json:"cooldown_minutes" validate:"gte=0"`
	Channels        []AlertChannelType `json:"channels" validate:"required,min=1,dive,oneof=email in_app webhook"`
	Recipients      []string           `json:"recipients"`
}

// UpdateRuleRequest defines updatable fields for an alert rule. Only supplied
// (non-nil) fields are merged into the existing rule.
type UpdateRuleRequest struct {
	Name            *string             `json:"name"`
	Description     *string             `json:"description"`
	Metric          *string             `json:"metric"`
	Condition       *RuleCondition      `json:"condition" validate:"omitempty,oneof=gt lt eq gte lte"`
	Threshold       *float64            `json:"threshold"`
	Severity        *AlertSeverity      `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Enabled         *bool               `json:"enabled"`
	CooldownMinutes *int                `json:"cooldown_minutes" validate:"omitempty,gte=0"`
	Channels        *[]AlertChannelType `json:"channels" validate:"omitempty,min=1,dive,oneof=email in_app webhook"`
	Recipients      *[]string           `json:"recipients"`
}
