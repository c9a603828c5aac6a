// Package clock implements the virtual game clock: a wall-clock anchor plus
// a user-supplied offset, read as elapsed game time in whole seconds.
package clock

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// ModeStandard is the default ruleset when none is given to Start.
const ModeStandard = "standard"

// Option configures the clock.
type Option func(*Virtual)

// WithNowFunc replaces the wall-clock source. Tests use this to drive the
// clock deterministically.
func WithNowFunc(fn func() time.Time) Option {
	return func(c *Virtual) {
		c.nowFn = fn
	}
}

// Virtual is the game clock. One instance lives for the whole process; a
// session is the span between a Start and the next Stop or Start. The set of
// already-announced event ids is scoped to the session and cleared on every
// Start and Stop.
type Virtual struct {
	log   *logger.Logger
	nowFn func() time.Time

	mu        sync.Mutex
	anchor    time.Time
	running   bool
	mode      string
	announced map[string]struct{}
}

// New creates a stopped clock.
func New(log *logger.Logger, opts ...Option) *Virtual {
	c := &Virtual{
		log:       log,
		nowFn:     time.Now,
		mode:      ModeStandard,
		announced: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseOffset converts an "M:SS" string into seconds. Returns
// domain.ErrInvalidTimeFormat for anything that isn't two non-negative
// integers separated by a colon.
func ParseOffset(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, domain.ErrInvalidTimeFormat
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || minutes < 0 {
		return 0, domain.ErrInvalidTimeFormat
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || seconds < 0 {
		return 0, domain.ErrInvalidTimeFormat
	}
	return minutes*60 + seconds, nil
}

// Start anchors the clock at the given elapsed offset and marks it running.
// Calling Start while already running is a hard restart, not a resume: the
// anchor moves and the announced set is cleared. On a parse error the clock
// state is left untouched.
func (c *Virtual) Start(offset, mode string) error {
	secs, err := ParseOffset(offset)
	if err != nil {
		c.log.Error("clock: bad start offset %q", offset)
		return err
	}
	if mode == "" {
		mode = ModeStandard
	}

	c.mu.Lock()
	c.anchor = c.nowFn().Add(-time.Duration(secs) * time.Second)
	c.running = true
	c.mode = mode
	c.announced = make(map[string]struct{})
	c.mu.Unlock()

	c.log.Info("clock: started at %s (%ds) in %s mode", offset, secs, mode)
	return nil
}

// Now returns the current game time in whole seconds, or 0 when stopped.
func (c *Virtual) Now() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	return int(c.nowFn().Sub(c.anchor) / time.Second)
}

// Stop halts the clock and clears the announced set. Idempotent.
func (c *Virtual) Stop() {
	c.mu.Lock()
	c.running = false
	c.announced = make(map[string]struct{})
	c.mu.Unlock()
	c.log.Info("clock: stopped")
}

// Running reports whether the clock is counting.
func (c *Virtual) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Mode returns the ruleset the current session was started with.
func (c *Virtual) Mode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// MarkAnnounced records an event id as spoken and reports whether it was
// newly recorded. Test-and-set in one step, so the fire decision and the
// duplicate guard cannot race.
func (c *Virtual) MarkAnnounced(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, done := c.announced[id]; done {
		return false
	}
	c.announced[id] = struct{}{}
	return true
}

// Announced reports whether an event id has been spoken this session.
func (c *Virtual) Announced(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, done := c.announced[id]
	return done
}

// AnnouncedCount returns the number of events spoken this session.
func (c *Virtual) AnnouncedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.announced)
}
