// Package schedule implements the announcement decision engine and the
// background tick driver that feeds it.
package schedule

import (
	"math/rand"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// Picker selects one index out of n message variants. Production uses
// uniform random; tests inject a deterministic stub.
type Picker func(n int) int

// AnnouncedSet records fired event ids for the current session.
// MarkAnnounced is test-and-set: it returns false when the id was already
// recorded, so the fire decision and the duplicate guard are one atomic step.
type AnnouncedSet interface {
	MarkAnnounced(id string) bool
}

// SchedulerOption configures the scheduler.
type SchedulerOption func(*Scheduler)

// WithPicker replaces the variant selection function.
func WithPicker(p Picker) SchedulerOption {
	return func(s *Scheduler) {
		s.pick = p
	}
}

// Scheduler decides, for one tick, which timer events are due and what text
// each should speak. It is stateless apart from the injected picker; all
// session state lives in the AnnouncedSet.
type Scheduler struct {
	log  *logger.Logger
	pick Picker
}

// NewScheduler creates a scheduler with uniform-random variant selection.
func NewScheduler(log *logger.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		log:  log,
		pick: rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Due returns the announcements that become eligible at game time now for
// one destination, and marks them announced as it goes.
//
// An event fires on the first tick where now enters its window
// [trigger-window, trigger+window]. An event whose window has fully elapsed
// (now > trigger+window) is silently skipped for the rest of the session:
// starting the clock late must not unleash a backlog of stale calls. Once
// fired, an event never fires again until the next session.
func (s *Scheduler) Due(dest string, now, window int, timers map[string]domain.TimerEvent, announced AnnouncedSet) []domain.Announcement {
	var out []domain.Announcement

	for name, ev := range timers {
		if now > ev.TriggerSecond+window {
			continue // missed for good this session
		}
		if now < ev.TriggerSecond-window {
			continue // not yet
		}

		id := dest + "_" + name
		if !announced.MarkAnnounced(id) {
			continue // already spoken this session
		}

		variants := ev.Variants()
		text := variants[s.pick(len(variants))]
		out = append(out, domain.Announcement{
			Destination: dest,
			Event:       name,
			Text:        text,
		})
		s.log.Debug("scheduler: %s due at %ds (trigger=%ds, window=%ds): %s",
			id, now, ev.TriggerSecond, window, text)
	}
	return out
}
