package app

import (
	"sync"
	"time"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// Cooldown throttles executions per pair. TryAcquire is an atomic
// check-and-set, so concurrent scans of the same pair can never both claim it.
type Cooldown struct {
	mu       sync.Mutex
	window   time.Duration
	lastFire map[string]time.Time
	now      func() time.Time
}

// NewCooldown creates a Cooldown with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window:   window,
		lastFire: make(map[string]time.Time),
		now:      time.Now,
	}
}

// TryAcquire claims the pair for execution. It returns false while the pair
// is still inside its cooldown window.
func (c *Cooldown) TryAcquire(pair exchange.Pair) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.lastFire[pair.Symbol()]; ok && now.Sub(last) < c.window {
		return false
	}
	c.lastFire[pair.Symbol()] = now
	return true
}

// Remaining returns how long until the pair can fire again, zero if it can
// fire now.
func (c *Cooldown) Remaining(pair exchange.Pair) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.lastFire[pair.Symbol()]
	if !ok {
		return 0
	}
	remaining := c.window - c.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}
