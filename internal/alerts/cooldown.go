package alerts

import (
	"sync"
	"time"
)

// Cooldown tracks the last trigger time per rule. One watermark covers every
// label set of the rule's metric, so a noisy metric with many dimensions
// produces at most one notification burst per cooldown window.
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldown creates an empty cooldown tracker.
func NewCooldown() *Cooldown {
	return &Cooldown{last: make(map[string]time.Time)}
}

// Ready reports whether the rule is outside its cooldown window at now.
func (c *Cooldown) Ready(ruleID string, cooldown time.Duration, now time.Time) bool {
	if cooldown <= 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.last[ruleID]
	if !ok {
		return true
	}
	return now.Sub(ts) >= cooldown
}

// Stamp records a trigger at now. Last write wins when multiple label sets
// trigger in the same tick.
func (c *Cooldown) Stamp(ruleID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[ruleID] = now
}
