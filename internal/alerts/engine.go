package alerts

import (
	"sync"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// Engine owns the active alert map and the per-rule cooldown watermarks.
// One instance exists per process; only the evaluator writes to it, so the
// internal locking is about HTTP readers, not concurrent evaluation.
//
// Alerts are never evicted. Resolution sets a field; resolved alerts stay
// queryable until process restart.
type Engine struct {
	mu       sync.RWMutex
	alerts   map[string]*models.Alert
	order    []string
	cooldown *Cooldown
}

// NewEngine creates an engine with no alerts and no cooldown history.
func NewEngine() *Engine {
	return &Engine{
		alerts:   make(map[string]*models.Alert),
		cooldown: NewCooldown(),
	}
}

// Cooldown exposes the engine's cooldown tracker to the evaluator.
func (e *Engine) Cooldown() *Cooldown {
	return e.cooldown
}

// Store registers a newly triggered alert.
func (e *Engine) Store(alert models.Alert) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.alerts[alert.ID]; !exists {
		e.order = append(e.order, alert.ID)
	}
	stored := alert
	e.alerts[alert.ID] = &stored
}

// Active returns every stored alert in trigger order, resolved ones
// included.
func (e *Engine) Active() []models.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Alert, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.alerts[id])
	}
	return out
}

// Get returns the alert with the given id.
func (e *Engine) Get(id string) (models.Alert, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.alerts[id]
	if !ok {
		return models.Alert{}, false
	}
	return *a, true
}

// Acknowledge marks the alert as acknowledged by the given user. Unknown ids
// and repeated calls are deliberate no-ops: lifecycle mutations are
// idempotent from the caller's perspective.
func (e *Engine) Acknowledge(id, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.alerts[id]
	if !ok || a.AcknowledgedAt != nil {
		return
	}
	now := time.Now().UTC()
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = userID
}

// Resolve marks the alert as resolved. Resolution does not require prior
// acknowledgement. Unknown ids and repeated calls are no-ops.
func (e *Engine) Resolve(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.alerts[id]
	if !ok || a.ResolvedAt != nil {
		return
	}
	now := time.Now().UTC()
	a.ResolvedAt = &now
}
