package models

// MetricKind distinguishes how recorded values for a series are combined.
type MetricKind string

const (
	// MetricKindCounter accumulates recorded deltas into a running total.
	MetricKindCounter MetricKind = "counter"
	// MetricKindGauge replaces the current value on every record.
	MetricKindGauge MetricKind = "gauge"
	// MetricKindHistogram tracks the distribution of observed values.
	MetricKindHistogram MetricKind = "histogram"
)

// MetricPoint is a single series value captured in a registry snapshot.
// Points are immutable; the registry hands out deep copies so an in-flight
// evaluation never observes later mutation.
type MetricPoint struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// CompanyIDLabel is the metric label carrying the owning tenant. Alerts built
// from points without it are attributed to SystemCompanyID.
const CompanyIDLabel = "company_id"

// SystemCompanyID is the sentinel tenant for alerts on unlabeled metrics.
const SystemCompanyID = "system"

// RecordMetricRequest is the payload business components use to push a
// measurement into the registry over HTTP.
type RecordMetricRequest struct {
	Name   string            `json:"name" validate:"required"`
	Kind   MetricKind        `json:"kind" validate:"required,oneof=counter gauge histogram"`
	Labels map[string]string `json:"labels"`
	Value  float64           `json:"value"`
}
