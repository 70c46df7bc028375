// Package metrics implements the in-process metric registry the alert
// evaluator reads from. Business components record counters, gauges and
// histograms with free-form label sets; the evaluator only ever consumes
// point-in-time snapshots.
package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

type series struct {
	labels map[string]string
	value  float64
}

type histogram struct {
	labels map[string]string
	count  uint64
	sum    float64
	min    float64
	max    float64
}

// Registry holds named, labeled numeric series. Unknown metric names are
// created lazily on first record; there are no error conditions.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]map[string]*series
	gauges     map[string]map[string]*series
	histograms map[string]map[string]*histogram
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]map[string]*series),
		gauges:     make(map[string]map[string]*series),
		histograms: make(map[string]map[string]*histogram),
	}
}

// IncCounter adds delta to the running total of the counter series.
func (r *Registry) IncCounter(name string, labels map[string]string, delta float64) {
	key := labelKey(labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	byLabel, ok := r.counters[name]
	if !ok {
		byLabel = make(map[string]*series)
		r.counters[name] = byLabel
	}
	s, ok := byLabel[key]
	if !ok {
		s = &series{labels: copyLabels(labels)}
		byLabel[key] = s
	}
	s.value += delta
}

// SetGauge replaces the current value of the gauge series.
func (r *Registry) SetGauge(name string, labels map[string]string, value float64) {
	key := labelKey(labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	byLabel, ok := r.gauges[name]
	if !ok {
		byLabel = make(map[string]*series)
		r.gauges[name] = byLabel
	}
	s, ok := byLabel[key]
	if !ok {
		s = &series{labels: copyLabels(labels)}
		byLabel[key] = s
	}
	s.value = value
}

// Observe records one sample into the histogram series.
func (r *Registry) Observe(name string, labels map[string]string, value float64) {
	key := labelKey(labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	byLabel, ok := r.histograms[name]
	if !ok {
		byLabel = make(map[string]*histogram)
		r.histograms[name] = byLabel
	}
	h, ok := byLabel[key]
	if !ok {
		h = &histogram{labels: copyLabels(labels), min: value, max: value}
		byLabel[key] = h
	}
	h.count++
	h.sum += value
	if value < h.min {
		h.min = value
	}
	if value > h.max {
		h.max = value
	}
}

// Record routes a measurement to the right operation for its kind. Unknown
// kinds are ignored.
func (r *Registry) Record(kind models.MetricKind, name string, labels map[string]string, value float64) {
	switch kind {
	case models.MetricKindCounter:
		r.IncCounter(name, labels, value)
	case models.MetricKindGauge:
		r.SetGauge(name, labels, value)
	case models.MetricKindHistogram:
		r.Observe(name, labels, value)
	}
}

// Snapshot returns a deep copy of every known series. Counter and gauge
// series yield one point each; a histogram series yields <name>_count,
// <name>_sum and <name>_avg points so rules can target distributions.
// The returned points are detached from registry state and safe to hold
// across subsequent records.
func (r *Registry) Snapshot() []models.MetricPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var points []models.MetricPoint
	for _, name := range sortedKeys(r.counters) {
		for _, key := range sortedKeys(r.counters[name]) {
			s := r.counters[name][key]
			points = append(points, models.MetricPoint{Name: name, Labels: copyLabels(s.labels), Value: s.value})
		}
	}
	for _, name := range sortedKeys(r.gauges) {
		for _, key := range sortedKeys(r.gauges[name]) {
			s := r.gauges[name][key]
			points = append(points, models.MetricPoint{Name: name, Labels: copyLabels(s.labels), Value: s.value})
		}
	}
	for _, name := range sortedKeys(r.histograms) {
		for _, key := range sortedKeys(r.histograms[name]) {
			h := r.histograms[name][key]
			avg := 0.0
			if h.count > 0 {
				avg = h.sum / float64(h.count)
			}
			points = append(points,
				models.MetricPoint{Name: name + "_count", Labels: copyLabels(h.labels), Value: float64(h.count)},
				models.MetricPoint{Name: name + "_sum", Labels: copyLabels(h.labels), Value: h.sum},
				models.MetricPoint{Name: name + "_avg", Labels: copyLabels(h.labels), Value: avg},
			)
		}
	}
	return points
}

// labelEscaper keeps the separator characters unambiguous inside label keys
// and values, so a value containing "," or "=" cannot alias another series.
var labelEscaper = strings.NewReplacer(`\`, `\\`, "=", `\=`, ",", `\,`)

// labelKey produces a canonical key for a label set so the same labels in any
// order address the same series.
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, labelEscaper.Replace(k)+"="+labelEscaper.Replace(v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
