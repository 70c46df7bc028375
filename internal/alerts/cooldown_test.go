package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownWindow(t *testing.T) {
	c := NewCooldown()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	assert.True(t, c.Ready("low_stock", window, base), "no history means ready")

	c.Stamp("low_stock", base)
	assert.False(t, c.Ready("low_stock", window, base.Add(5*time.Minute)))
	assert.False(t, c.Ready("low_stock", window, base.Add(14*time.Minute+59*time.Second)))
	assert.True(t, c.Ready("low_stock", window, base.Add(15*time.Minute)), "window boundary is inclusive")
	assert.True(t, c.Ready("low_stock", window, base.Add(16*time.Minute)))
}

func TestCooldownZeroWindowAlwaysReady(t *testing.T) {
	c := NewCooldown()
	now := time.Now().UTC()
	c.Stamp("r", now)
	assert.True(t, c.Ready("r", 0, now))
	assert.True(t, c.Ready("r", -time.Minute, now))
}

func TestCooldownIsPerRule(t *testing.T) {
	c := NewCooldown()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c.Stamp("a", base)
	assert.False(t, c.Ready("a", time.Hour, base.Add(time.Minute)))
	assert.True(t, c.Ready("b", time.Hour, base.Add(time.Minute)))
}
