package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// GameClock is the driver's view of the virtual clock.
type GameClock interface {
	Running() bool
	Now() int
	Mode() string
	MarkAnnounced(id string) bool
}

// DriverOption configures the driver.
type DriverOption func(*Driver)

// WithTickInterval sets how often the driver evaluates the catalog.
func WithTickInterval(d time.Duration) DriverOption {
	return func(dr *Driver) {
		dr.tickInterval = d
	}
}

// Driver runs the background tick loop: once per interval it reads the game
// clock and, for every connected destination, asks the scheduler what is due
// and hands the results to the announcer. Dispatch is fire-and-forget so one
// destination's slow synthesis never stalls the tick or other destinations.
type Driver struct {
	clock        GameClock
	store        domain.ConfigStore
	scheduler    *Scheduler
	sink         domain.Announcer
	log          *logger.Logger
	tickInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewDriver creates a driver with a 1 second tick.
func NewDriver(clock GameClock, store domain.ConfigStore, scheduler *Scheduler, sink domain.Announcer, log *logger.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		clock:        clock,
		store:        store,
		scheduler:    scheduler,
		sink:         sink,
		log:          log,
		tickInterval: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins the background loop. Non-blocking.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		d.log.Warn("driver already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true

	go d.loop(childCtx)
	d.log.Info("driver started (tick=%s)", d.tickInterval)
}

// Stop shuts the loop down.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}
	d.cancel()
	d.running = false
	d.log.Info("driver stopped")
}

func (d *Driver) loop(ctx context.Context) {
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick evaluates one cycle. Exported so a front-end command can force an
// immediate evaluation right after starting the clock. Never returns an
// error: every failure is logged and contained to its destination.
func (d *Driver) Tick(ctx context.Context) {
	if !d.clock.Running() {
		return
	}

	now := d.clock.Now()
	mode := d.clock.Mode()

	for _, dest := range d.sink.Destinations() {
		timers := d.store.Timers(dest, mode, "")
		if len(timers) == 0 {
			continue
		}
		window := d.store.WarningWindow(dest)

		due := d.scheduler.Due(dest, now, window, timers, d.clock)
		if len(due) == 0 {
			continue
		}

		settings := d.store.Settings(dest)
		for _, a := range due {
			go func(a domain.Announcement) {
				if err := d.sink.Announce(ctx, a.Destination, a.Text, settings); err != nil {
					d.log.Error("driver: announcing %s on %s: %v", a.Event, a.Destination, err)
				}
			}(a)
		}
	}
}
