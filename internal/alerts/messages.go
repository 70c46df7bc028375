package alerts

import (
	"fmt"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// MessageFunc renders the human-readable message for a triggered rule.
type MessageFunc func(rule models.AlertRule, point models.MetricPoint) string

// messageTemplates maps well-known rule ids to their message renderers. New
// product rules add an entry here; the evaluator control flow never changes.
var messageTemplates = map[string]MessageFunc{
	"low_stock": func(rule models.AlertRule, point models.MetricPoint) string {
		product := point.Labels["product"]
		if product == "" {
			product = "unknown product"
		}
		return fmt.Sprintf("Stock for %s is down to %.0f units (minimum %.0f)", product, point.Value, rule.Threshold)
	},
	"high_error_rate": func(rule models.AlertRule, point models.MetricPoint) string {
		return fmt.Sprintf("Error rate reached %.2f errors/min, above the %.2f threshold", point.Value, rule.Threshold)
	},
	"payment_failures": func(rule models.AlertRule, point models.MetricPoint) string {
		return fmt.Sprintf("%.0f subscription payment failures recorded (threshold %.0f)", point.Value, rule.Threshold)
	},
	"api_latency_high": func(rule models.AlertRule, point models.MetricPoint) string {
		route := point.Labels["route"]
		if route == "" {
			return fmt.Sprintf("API latency at %.0fms, above the %.0fms threshold", point.Value, rule.Threshold)
		}
		return fmt.Sprintf("API latency on %s at %.0fms, above the %.0fms threshold", route, point.Value, rule.Threshold)
	},
}

// renderMessage picks the rule-specific template, falling back to the
// generic "{metric}: {value} {condition} {threshold}" form for rule ids
// without one.
func renderMessage(rule models.AlertRule, point models.MetricPoint) string {
	if tmpl, ok := messageTemplates[rule.ID]; ok {
		return tmpl(rule, point)
	}
	return fmt.Sprintf("%s: %g %s %g", point.Name, point.Value, rule.Condition, rule.Threshold)
}
