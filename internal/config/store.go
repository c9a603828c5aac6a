// Package config implements the persisted per-destination configuration:
// timer catalogs (per mode), TTS settings and the warning window. Backed by
// a single JSON file; every mutation is written through immediately, and
// readers always see the latest committed state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// Compile-time interface check.
var _ domain.ConfigStore = (*Store)(nil)

// Destination is everything configured for one voice destination. Timers is
// the standard-mode catalog; Modes holds alternate catalogs keyed by mode
// name.
type Destination struct {
	Settings domain.Settings                         `json:"settings"`
	Timers   map[string]domain.TimerEvent            `json:"timers"`
	Modes    map[string]map[string]domain.TimerEvent `json:"modes,omitempty"`
}

// Store holds all destination configurations and persists them to a JSON
// file. Safe for concurrent use. Unknown destinations are created with the
// default catalog on first access.
type Store struct {
	mu      sync.RWMutex
	path    string
	log     *logger.Logger
	configs map[string]*Destination
}

// NewStore loads the configuration file at path, starting empty when the
// file is missing or unreadable.
func NewStore(path string, log *logger.Logger) *Store {
	s := &Store{
		path:    path,
		log:     log,
		configs: make(map[string]*Destination),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error("config: reading %s: %v", path, err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.configs); err != nil {
		log.Error("config: %s is not valid JSON, starting fresh: %v", path, err)
		s.configs = make(map[string]*Destination)
		return s
	}
	log.Info("config: loaded %d destination(s) from %s", len(s.configs), path)
	return s
}

// saveLocked writes the full config map to disk. Must be called with the
// write lock held. Failures are logged, not returned: an unwritable config
// file shouldn't take the bot down mid-session.
func (s *Store) saveLocked() {
	data, err := json.MarshalIndent(s.configs, "", "  ")
	if err != nil {
		s.log.Error("config: marshal: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Error("config: writing %s: %v", s.path, err)
	}
}

// ensureLocked returns the config for dest, creating and persisting the
// default one if it doesn't exist. Must be called with the write lock held.
func (s *Store) ensureLocked(dest string) *Destination {
	cfg, ok := s.configs[dest]
	if !ok {
		cfg = DefaultDestination()
		s.configs[dest] = cfg
		s.saveLocked()
		s.log.Info("config: created default configuration for %s", dest)
	}
	return cfg
}

// catalogLocked resolves the timer map for a mode. The empty mode and
// "standard" both mean the base catalog; unknown modes yield nil.
func catalogLocked(cfg *Destination, mode string) map[string]domain.TimerEvent {
	if mode == "" || mode == "standard" {
		return cfg.Timers
	}
	return cfg.Modes[mode]
}

// Timers returns a snapshot of the events for a destination and mode,
// optionally filtered by category. Never errors: missing destinations get
// the default catalog, unknown modes return an empty map.
func (s *Store) Timers(dest, mode string, category domain.Category) map[string]domain.TimerEvent {
	s.mu.Lock()
	cfg := s.ensureLocked(dest)
	src := catalogLocked(cfg, mode)

	out := make(map[string]domain.TimerEvent, len(src))
	for name, ev := range src {
		if category != "" && ev.Category != category {
			continue
		}
		out[name] = ev
	}
	s.mu.Unlock()
	return out
}

// WarningWindow returns the destination's eligibility window in seconds,
// clamped to [0, MaxWarningWindow].
func (s *Store) WarningWindow(dest string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clampWarning(s.ensureLocked(dest).Settings.TTS.WarningWindow)
}

// Settings returns the destination's announcement settings.
func (s *Store) Settings(dest string) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(dest).Settings
}

// UpsertTimer creates or replaces a timer in the destination's mode catalog.
// The event is validated the same way imports are: trigger bounds, message
// trimming and length limits, category normalization.
func (s *Store) UpsertTimer(dest, mode, name string, ev domain.TimerEvent) error {
	clean, ok := sanitizeTimer(ev)
	if !ok {
		return fmt.Errorf("timer %q: trigger must be 0..%d seconds", name, domain.MaxTriggerSecond)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.ensureLocked(dest)

	if mode == "" || mode == "standard" {
		cfg.Timers[name] = clean
	} else {
		if cfg.Modes == nil {
			cfg.Modes = make(map[string]map[string]domain.TimerEvent)
		}
		if cfg.Modes[mode] == nil {
			cfg.Modes[mode] = make(map[string]domain.TimerEvent)
		}
		cfg.Modes[mode][name] = clean
	}
	s.saveLocked()
	s.log.Debug("config: upserted timer %s/%s (t=%ds, %d message(s))",
		dest, name, clean.TriggerSecond, len(clean.Messages))
	return nil
}

// AddMessage appends a message variant to an existing timer, creating the
// timer when absent.
func (s *Store) AddMessage(dest, mode, name string, triggerSecond int, message string, category domain.Category) error {
	s.mu.Lock()
	cfg := s.ensureLocked(dest)
	existing, ok := catalogLocked(cfg, mode)[name]
	s.mu.Unlock()

	messages := []string{}
	if ok {
		messages = append(messages, existing.Variants()...)
	}
	if !contains(messages, message) {
		messages = append(messages, message)
	}

	return s.UpsertTimer(dest, mode, name, domain.TimerEvent{
		TriggerSecond: triggerSecond,
		Messages:      messages,
		Category:      category,
	})
}

// RemoveTimer deletes a timer from the destination's mode catalog. Reports
// whether anything was removed.
func (s *Store) RemoveTimer(dest, mode, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.ensureLocked(dest)

	catalog := catalogLocked(cfg, mode)
	if _, ok := catalog[name]; !ok {
		return false
	}
	delete(catalog, name)
	s.saveLocked()
	s.log.Debug("config: removed timer %s/%s", dest, name)
	return true
}

// RemoveMessage drops one variant from a timer by index and returns the
// removed text. A list that would become empty falls back to the single
// placeholder message instead.
func (s *Store) RemoveMessage(dest, mode, name string, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.ensureLocked(dest)

	catalog := catalogLocked(cfg, mode)
	ev, ok := catalog[name]
	if !ok {
		return "", domain.ErrNotFound
	}

	messages := ev.Variants()
	if index < 0 || index >= len(messages) {
		return "", fmt.Errorf("message index %d out of range, timer has %d message(s)", index, len(messages))
	}

	removed := messages[index]
	messages = append(messages[:index], messages[index+1:]...)
	if len(messages) == 0 {
		messages = []string{domain.PlaceholderMessage}
	}

	ev.Messages = messages
	ev.LegacyMessage = ""
	catalog[name] = ev
	s.saveLocked()
	return removed, nil
}

// SetVoice updates the destination's TTS language and accent. The pair must
// be one of the supported combinations.
func (s *Store) SetVoice(dest, language, accent string) (string, error) {
	name, ok := domain.ValidVoicePair(language, accent)
	if !ok {
		return "", fmt.Errorf("unsupported language/accent combination %s/%s", language, accent)
	}

	s.mu.Lock()
	cfg := s.ensureLocked(dest)
	cfg.Settings.TTS.Language = language
	cfg.Settings.TTS.Accent = accent
	s.saveLocked()
	s.mu.Unlock()
	return name, nil
}

// SetSpeed updates the TTS speed, bounds checked.
func (s *Store) SetSpeed(dest string, speed float64) error {
	if speed < domain.MinSpeed || speed > domain.MaxSpeed {
		return fmt.Errorf("speed must be between %.1f and %.1f", domain.MinSpeed, domain.MaxSpeed)
	}
	s.mu.Lock()
	s.ensureLocked(dest).Settings.TTS.Speed = speed
	s.saveLocked()
	s.mu.Unlock()
	return nil
}

// SetWarningWindow updates the eligibility window, clamped to valid bounds.
func (s *Store) SetWarningWindow(dest string, seconds int) int {
	clamped := clampWarning(seconds)
	s.mu.Lock()
	s.ensureLocked(dest).Settings.TTS.WarningWindow = clamped
	s.saveLocked()
	s.mu.Unlock()
	return clamped
}

// SetVolume updates the playback volume, clamped to [0, 1].
func (s *Store) SetVolume(dest string, volume float64) float64 {
	clamped := clamp(volume, 0, 1)
	s.mu.Lock()
	s.ensureLocked(dest).Settings.Volume = clamped
	s.saveLocked()
	s.mu.Unlock()
	return clamped
}

// Export returns the destination's configuration as indented JSON.
func (s *Store) Export(dest string) ([]byte, error) {
	s.mu.Lock()
	cfg := s.ensureLocked(dest)
	s.mu.Unlock()
	return json.MarshalIndent(cfg, "", "  ")
}

func clampWarning(v int) int {
	if v < 0 {
		return 0
	}
	if v > domain.MaxWarningWindow {
		return domain.MaxWarningWindow
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
