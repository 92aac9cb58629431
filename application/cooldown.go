package application

import (
	"sync"
	"time"
)

// cooldownPruneSize is the map size above which stale entries are swept
const cooldownPruneSize = 1024

// Cooldown throttles reply drops per user
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[int64]time.Time
	now    func() time.Time
}

// NewCooldown creates a per-user cooldown; a zero window disables it
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[int64]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether the user is outside the window and, if so, starts a new one
func (c *Cooldown) Allow(userID int64) bool {
	if c.window <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[userID]; ok && now.Sub(last) < c.window {
		return false
	}
	c.last[userID] = now

	if len(c.last) > cooldownPruneSize {
		for id, ts := range c.last {
			if now.Sub(ts) >= c.window {
				delete(c.last, id)
			}
		}
	}
	return true
}
