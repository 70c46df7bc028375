package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

type staticSource struct {
	points []models.MetricPoint
	err    error
}

func (s *staticSource) Snapshot(context.Context) ([]models.MetricPoint, error) {
	return s.points, s.err
}

type staticRules []models.AlertRule

func (r staticRules) List() []models.AlertRule { return r }

type captureDispatcher struct {
	mu     sync.Mutex
	alerts []models.Alert
	rules  []models.AlertRule
}

func (d *captureDispatcher) Dispatch(_ context.Context, alert models.Alert, rule models.AlertRule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, alert)
	d.rules = append(d.rules, rule)
}

func (d *captureDispatcher) dispatched() []models.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Alert(nil), d.alerts...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEvaluator(rules RuleSource, source MetricSource, dispatcher Dispatcher) *Evaluator {
	return NewEvaluator(EvaluatorOptions{
		Config:  config.AlertsConfig{Enabled: true, EvaluationInterval: time.Minute},
		Rules:   rules,
		Metrics: source,
		Engine:  NewEngine(),
		Fanout:  dispatcher,
		Logger:  testLogger(),
	})
}

func evalRule(id string, metric string, cond models.RuleCondition, threshold float64) models.AlertRule {
	return models.AlertRule{
		ID:              id,
		Name:            id,
		Metric:          metric,
		Condition:       cond,
		Threshold:       threshold,
		Severity:        models.AlertSeverityHigh,
		Enabled:         true,
		CooldownMinutes: 15,
		Channels:        []models.AlertChannelType{models.AlertChannelInApp},
	}
}

func TestCompareCondition(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		threshold float64
		condition models.RuleCondition
		expected  bool
	}{
		{"gt above", 11, 10, models.ConditionGreaterThan, true},
		{"gt at threshold", 10, 10, models.ConditionGreaterThan, false},
		{"gte at threshold", 10, 10, models.ConditionGreaterThanOrEqual, true},
		{"gte below", 9.99, 10, models.ConditionGreaterThanOrEqual, false},
		{"lt below", 9, 10, models.ConditionLessThan, true},
		{"lt at threshold", 10, 10, models.ConditionLessThan, false},
		{"lte at threshold", 10, 10, models.ConditionLessThanOrEqual, true},
		{"eq exact", 10, 10, models.ConditionEqual, true},
		{"eq float drift", 0.1 + 0.2, 0.3, models.ConditionEqual, true},
		{"eq different", 10.1, 10, models.ConditionEqual, false},
		{"unknown condition", 100, 10, models.RuleCondition("between"), false},
		{"empty condition", 100, 10, models.RuleCondition(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareCondition(tt.value, tt.threshold, tt.condition))
		})
	}
}

func TestEvaluatorTriggersAndDispatches(t *testing.T) {
	source := &staticSource{points: []models.MetricPoint{
		{Name: "stock_level", Labels: map[string]string{"company_id": "acme", "product": "sku-1"}, Value: 3},
	}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)}, source, dispatcher)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	e.RunOnce(context.Background())

	alerts := dispatcher.dispatched()
	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, "low_stock_1772366400", alert.ID)
	assert.Equal(t, "low_stock", alert.RuleID)
	assert.Equal(t, "acme", alert.CompanyID)
	assert.Equal(t, 3.0, alert.Value)
	assert.Equal(t, 10.0, alert.Threshold)
	assert.Equal(t, now, alert.TriggeredAt)
	assert.Equal(t, "Stock for sku-1 is down to 3 units (minimum 10)", alert.Message)

	stored, ok := e.engine.Get(alert.ID)
	require.True(t, ok)
	assert.Equal(t, alert.Message, stored.Message)
}

func TestEvaluatorSkipsDisabledRules(t *testing.T) {
	rule := evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)
	rule.Enabled = false
	source := &staticSource{points: []models.MetricPoint{{Name: "stock_level", Value: 1}}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{rule}, source, dispatcher)

	e.RunOnce(context.Background())

	assert.Empty(t, dispatcher.dispatched())
	assert.Empty(t, e.engine.Active())
}

func TestEvaluatorHonorsCooldown(t *testing.T) {
	source := &staticSource{points: []models.MetricPoint{{Name: "stock_level", Value: 1}}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)}, source, dispatcher)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	e.now = func() time.Time { return clock }

	e.RunOnce(context.Background())
	require.Len(t, dispatcher.dispatched(), 1, "first tick fires")

	clock = base.Add(5 * time.Minute)
	e.RunOnce(context.Background())
	assert.Len(t, dispatcher.dispatched(), 1, "inside cooldown window nothing fires")

	clock = base.Add(16 * time.Minute)
	e.RunOnce(context.Background())
	assert.Len(t, dispatcher.dispatched(), 2, "after the window the rule fires again")
}

func TestEvaluatorSkipsTickOnSnapshotError(t *testing.T) {
	source := &staticSource{err: errors.New("backend unavailable")}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)}, source, dispatcher)

	e.RunOnce(context.Background())

	assert.Empty(t, dispatcher.dispatched())
	assert.Empty(t, e.engine.Active())
	assert.True(t, e.engine.Cooldown().Ready("low_stock", 15*time.Minute, time.Now().UTC()),
		"a skipped tick must not stamp the cooldown")
}

func TestEvaluatorSequencesAlertsWithinOneTick(t *testing.T) {
	source := &staticSource{points: []models.MetricPoint{
		{Name: "stock_level", Labels: map[string]string{"product": "sku-1"}, Value: 2},
		{Name: "stock_level", Labels: map[string]string{"product": "sku-2"}, Value: 4},
	}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)}, source, dispatcher)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	e.RunOnce(context.Background())

	alerts := e.engine.Active()
	require.Len(t, alerts, 2)
	assert.Equal(t, "low_stock_1772366400", alerts[0].ID)
	assert.Equal(t, "low_stock_1772366400_1", alerts[1].ID)
	assert.Len(t, dispatcher.dispatched(), 2)
}

func TestEvaluatorDefaultsCompanyToSystem(t *testing.T) {
	source := &staticSource{points: []models.MetricPoint{{Name: "error_rate", Value: 50}}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("high_error_rate", "error_rate", models.ConditionGreaterThan, 10)}, source, dispatcher)

	e.RunOnce(context.Background())

	alerts := dispatcher.dispatched()
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SystemCompanyID, alerts[0].CompanyID)
}

func TestRunOnceIsSingleFlight(t *testing.T) {
	source := &staticSource{points: []models.MetricPoint{{Name: "stock_level", Value: 1}}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)}, source, dispatcher)

	e.inFlight.Store(true)
	e.RunOnce(context.Background())
	assert.Empty(t, dispatcher.dispatched(), "a tick due while one runs is dropped")

	e.inFlight.Store(false)
	e.RunOnce(context.Background())
	assert.Len(t, dispatcher.dispatched(), 1)
}

func TestEvaluatorIgnoresNonMatchingMetrics(t *testing.T) {
	source := &staticSource{points: []models.MetricPoint{
		{Name: "orders_created", Value: 1},
		{Name: "stock_level", Value: 50},
	}}
	dispatcher := &captureDispatcher{}
	e := newTestEvaluator(staticRules{evalRule("low_stock", "stock_level", models.ConditionLessThan, 10)}, source, dispatcher)

	e.RunOnce(context.Background())

	assert.Empty(t, dispatcher.dispatched())
}
