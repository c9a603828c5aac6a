package playback

import (
	"sync"
	"time"
)

// Countdown is a restartable one-shot timer. Arm it with a duration and a
// callback; restarting before it fires pushes the deadline out, cancelling
// stops it entirely. The callback runs at most once per arm, on its own
// goroutine. Safe for concurrent use.
type Countdown struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped on every arm/cancel to invalidate stale fires
}

// NewCountdown returns an unarmed countdown.
func NewCountdown() *Countdown {
	return &Countdown{}
}

// Arm schedules fn to run after d, replacing any pending countdown.
func (c *Countdown) Arm(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen

	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

// Cancel stops any pending countdown. Safe when unarmed.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}
