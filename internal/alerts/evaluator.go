package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	vm "github.com/VictoriaMetrics/metrics"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// MetricSource produces the point-in-time snapshot a tick evaluates against.
type MetricSource interface {
	Snapshot(ctx context.Context) ([]models.MetricPoint, error)
}

// RuleSource lists the rules to evaluate, in insertion order.
type RuleSource interface {
	List() []models.AlertRule
}

// Dispatcher hands a triggered alert to the notification fanout.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert models.Alert, rule models.AlertRule)
}

// EvaluatorOptions encapsulates the dependencies required to run the
// evaluation loop.
type EvaluatorOptions struct {
	Config  config.AlertsConfig
	Rules   RuleSource
	Metrics MetricSource
	Engine  *Engine
	Fanout  Dispatcher
	Logger  *slog.Logger
}

// Evaluator turns metric snapshots into alerts on a fixed interval. A tick
// never overlaps itself: when the previous tick is still running the due one
// is skipped, not queued.
type Evaluator struct {
	cfg     config.AlertsConfig
	rules   RuleSource
	metrics MetricSource
	engine  *Engine
	fanout  Dispatcher
	log     *slog.Logger

	// now is swappable so tests can drive the clock.
	now func() time.Time

	inFlight atomic.Bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewEvaluator constructs an evaluator. It does not start the loop.
func NewEvaluator(opts EvaluatorOptions) *Evaluator {
	return &Evaluator{
		cfg:     opts.Config,
		rules:   opts.Rules,
		metrics: opts.Metrics,
		engine:  opts.Engine,
		fanout:  opts.Fanout,
		log:     opts.Logger.With("component", "alert_evaluator"),
		now:     func() time.Time { return time.Now().UTC() },
		stop:    make(chan struct{}),
	}
}

// Start launches the evaluation loop. It is a no-op when alerting is
// disabled.
func (e *Evaluator) Start(ctx context.Context) {
	if !e.cfg.Enabled {
		e.log.Info("alerting disabled; evaluator will not start")
		return
	}
	interval := e.cfg.EvaluationInterval
	if interval <= 0 {
		interval = time.Minute
	}
	e.log.Info("starting alert evaluator", "interval", interval)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run an initial evaluation so alerts fire soon after startup.
		e.RunOnce(ctx)

		for {
			select {
			case <-ticker.C:
				e.RunOnce(ctx)
			case <-e.stop:
				e.log.Info("alert evaluator stopping")
				return
			case <-ctx.Done():
				e.log.Info("alert evaluator context cancelled")
				return
			}
		}
	}()
}

// Stop signals the evaluator to stop and waits for the loop to exit.
func (e *Evaluator) Stop() {
	close(e.stop)
	e.wg.Wait()
}

// RunOnce executes a single evaluation tick behind a single-flight guard:
// a tick that comes due while another is still running is skipped entirely.
func (e *Evaluator) RunOnce(ctx context.Context) {
	if !e.inFlight.CompareAndSwap(false, true) {
		vm.GetOrCreateCounter("estoque_alert_ticks_skipped_total").Inc()
		e.log.Debug("previous evaluation still running, skipping tick")
		return
	}
	defer e.inFlight.Store(false)
	e.evaluateCycle(ctx)
}

func (e *Evaluator) evaluateCycle(ctx context.Context) {
	vm.GetOrCreateCounter("estoque_alert_ticks_total").Inc()

	snapshot, err := e.metrics.Snapshot(ctx)
	if err != nil {
		// A failed snapshot invalidates the whole tick; partial evaluation
		// against stale data would be worse than waiting for the next one.
		e.log.Error("failed to snapshot metrics, skipping tick", "error", err)
		return
	}

	now := e.now()
	var dispatches sync.WaitGroup
	for _, rule := range e.rules.List() {
		if !rule.Enabled {
			continue
		}
		if !e.engine.Cooldown().Ready(rule.ID, rule.CooldownDuration(), now) {
			continue
		}

		seq := 0
		for _, point := range snapshot {
			if point.Name != rule.Metric {
				continue
			}
			if !compareCondition(point.Value, rule.Threshold, rule.Condition) {
				continue
			}

			alert := e.buildAlert(rule, point, now, seq)
			seq++
			e.engine.Store(alert)
			e.engine.Cooldown().Stamp(rule.ID, now)
			vm.GetOrCreateCounter(`estoque_alerts_triggered_total{severity="` + string(alert.Severity) + `"}`).Inc()
			e.log.Info("alert triggered",
				"alert_id", alert.ID, "rule_id", rule.ID, "metric", point.Name,
				"value", point.Value, "threshold", rule.Threshold, "company_id", alert.CompanyID)

			rule := rule
			dispatches.Add(1)
			go func(alert models.Alert) {
				defer dispatches.Done()
				e.fanout.Dispatch(ctx, alert, rule)
			}(alert)
		}
	}
	// The tick owns its side effects: it finishes only after every fanout
	// for this cycle has completed.
	dispatches.Wait()
}

func (e *Evaluator) buildAlert(rule models.AlertRule, point models.MetricPoint, now time.Time, seq int) models.Alert {
	id := fmt.Sprintf("%s_%d", rule.ID, now.Unix())
	if seq > 0 {
		// Multiple label sets of the same metric can trigger within one
		// tick; each gets its own alert.
		id = fmt.Sprintf("%s_%d_%d", rule.ID, now.Unix(), seq)
	}
	companyID := point.Labels[models.CompanyIDLabel]
	if companyID == "" {
		companyID = models.SystemCompanyID
	}
	return models.Alert{
		ID:          id,
		RuleID:      rule.ID,
		Severity:    rule.Severity,
		Message:     renderMessage(rule, point),
		Metric:      point.Name,
		Value:       point.Value,
		Threshold:   rule.Threshold,
		Labels:      point.Labels,
		CompanyID:   companyID,
		TriggeredAt: now,
	}
}

// compareCondition evaluates value against threshold. Unknown condition
// strings evaluate to false rather than erroring; a misconfigured rule must
// never break the tick.
func compareCondition(value, threshold float64, condition models.RuleCondition) bool {
	switch condition {
	case models.ConditionGreaterThan:
		return value > threshold
	case models.ConditionLessThan:
		return value < threshold
	case models.ConditionEqual:
		return math.Abs(value-threshold) < 1e-9
	case models.ConditionGreaterThanOrEqual:
		return value >= threshold
	case models.ConditionLessThanOrEqual:
		return value <= threshold
	default:
		return false
	}
}
