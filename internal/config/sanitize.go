package config

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/matchcaller/matchcaller/internal/domain"
)

// ErrNoValidTimers rejects an import whose timer section contains nothing
// usable after sanitization.
var ErrNoValidTimers = errors.New("no valid timers found in configuration")

// ImportSummary describes what an import ended up applying.
type ImportSummary struct {
	Timers  int // timers in the final catalog
	Dropped int // timers discarded by sanitization
	Merged  bool
}

// importDoc mirrors the persisted Destination shape with pointer settings
// fields, so an absent value is distinguishable from an explicit zero and
// falls back to the default instead of being clamped to nothing.
type importDoc struct {
	Settings struct {
		Volume *float64 `json:"volume"`
		TTS    struct {
			Language       string            `json:"language"`
			Accent         string            `json:"accent"`
			Speed          *float64          `json:"speed"`
			WarningWindow  *int              `json:"warning_time"`
			Pronunciations map[string]string `json:"custom_pronunciations"`
		} `json:"tts_settings"`
	} `json:"settings"`
	Timers map[string]domain.TimerEvent            `json:"timers"`
	Modes  map[string]map[string]domain.TimerEvent `json:"modes"`
}

// Sanitize parses raw JSON into a destination config, clamping every value
// to its valid range and discarding unusable timers. Imported files come
// from users, so nothing in them is trusted: bad settings fall back to
// defaults, bad timers are dropped, and an import with no usable timers is
// rejected outright.
func Sanitize(raw []byte) (*Destination, int, error) {
	var in importDoc
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, 0, err
	}

	out := &Destination{
		Settings: domain.DefaultSettings(),
		Timers:   make(map[string]domain.TimerEvent),
	}

	// Settings: keep any valid value, silently fall back otherwise.
	if in.Settings.Volume != nil {
		out.Settings.Volume = clamp(*in.Settings.Volume, 0, 1)
	}
	tts := in.Settings.TTS
	if _, ok := domain.ValidVoicePair(tts.Language, tts.Accent); ok {
		out.Settings.TTS.Language = tts.Language
		out.Settings.TTS.Accent = tts.Accent
	}
	if tts.Speed != nil && *tts.Speed >= domain.MinSpeed && *tts.Speed <= domain.MaxSpeed {
		out.Settings.TTS.Speed = *tts.Speed
	}
	if tts.WarningWindow != nil {
		out.Settings.TTS.WarningWindow = clampWarning(*tts.WarningWindow)
	}
	if len(tts.Pronunciations) > 0 {
		out.Settings.TTS.Pronunciations = tts.Pronunciations
	}

	dropped := 0
	for name, ev := range in.Timers {
		clean, ok := sanitizeTimer(ev)
		if !ok {
			dropped++
			continue
		}
		out.Timers[name] = clean
	}

	// Alternate mode catalogs go through the same per-timer rules.
	for mode, timers := range in.Modes {
		cleanMode := make(map[string]domain.TimerEvent)
		for name, ev := range timers {
			clean, ok := sanitizeTimer(ev)
			if !ok {
				dropped++
				continue
			}
			cleanMode[name] = clean
		}
		if len(cleanMode) > 0 {
			if out.Modes == nil {
				out.Modes = make(map[string]map[string]domain.TimerEvent)
			}
			out.Modes[mode] = cleanMode
		}
	}

	if len(out.Timers) == 0 && len(out.Modes) == 0 {
		return nil, dropped, ErrNoValidTimers
	}
	return out, dropped, nil
}

// sanitizeTimer validates one event. Returns false when the trigger is out
// of bounds; message problems are repaired instead of rejected.
func sanitizeTimer(ev domain.TimerEvent) (domain.TimerEvent, bool) {
	if ev.TriggerSecond < 0 || ev.TriggerSecond > domain.MaxTriggerSecond {
		return domain.TimerEvent{}, false
	}

	var messages []string
	for _, msg := range ev.Variants() {
		msg = strings.TrimSpace(msg)
		if msg == "" || len(msg) > domain.MaxMessageLen {
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		messages = []string{domain.PlaceholderMessage}
	}

	return domain.TimerEvent{
		TriggerSecond: ev.TriggerSecond,
		Messages:      messages,
		Category:      domain.NormalizeCategory(string(ev.Category)),
	}, true
}

// Import applies a sanitized configuration to a destination. With merge,
// imported settings overwrite current ones but the catalogs are combined;
// keepTimers controls whether existing timers survive name collisions.
// Without merge the whole destination config is replaced.
func (s *Store) Import(dest string, raw []byte, merge, keepTimers bool) (*ImportSummary, error) {
	incoming, dropped, err := Sanitize(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if merge {
		current := s.ensureLocked(dest)
		if keepTimers {
			// Union of both catalogs; imported timers win name collisions.
			merged := make(map[string]domain.TimerEvent, len(current.Timers)+len(incoming.Timers))
			for name, ev := range current.Timers {
				merged[name] = ev
			}
			for name, ev := range incoming.Timers {
				merged[name] = ev
			}
			incoming.Timers = merged
		}
		if incoming.Modes == nil {
			incoming.Modes = current.Modes
		}
	}

	s.configs[dest] = incoming
	s.saveLocked()
	s.log.Info("config: imported %d timer(s) for %s (%d dropped, merge=%v)",
		len(incoming.Timers), dest, dropped, merge)

	return &ImportSummary{
		Timers:  len(incoming.Timers),
		Dropped: dropped,
		Merged:  merge,
	}, nil
}
