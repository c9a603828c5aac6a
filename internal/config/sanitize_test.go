package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/matchcaller/matchcaller/internal/domain"
)

func TestSanitizeClampsAndRepairs(t *testing.T) {
	raw := []byte(`{
		"settings": {
			"volume": 2.5,
			"tts_settings": {
				"language": "en",
				"accent": "co.uk",
				"speed": 9.0,
				"warning_time": 90
			}
		},
		"timers": {
			"good": {"time": 120, "messages": ["on time"], "category": "objective"},
			"legacy": {"time": 60, "message": "old style", "category": "nonsense"},
			"too_late": {"time": 4000, "messages": ["never"]},
			"blank": {"time": 30, "messages": ["", "   "]}
		}
	}`)

	cfg, dropped, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	if cfg.Settings.Volume != 1.0 {
		t.Fatalf("expected volume clamped to 1.0, got %v", cfg.Settings.Volume)
	}
	if cfg.Settings.TTS.Language != "en" || cfg.Settings.TTS.Accent != "co.uk" {
		t.Fatalf("expected valid voice pair kept, got %s/%s", cfg.Settings.TTS.Language, cfg.Settings.TTS.Accent)
	}
	if cfg.Settings.TTS.Speed != 1.0 {
		t.Fatalf("expected out-of-range speed reset to default, got %v", cfg.Settings.TTS.Speed)
	}
	if cfg.Settings.TTS.WarningWindow != domain.MaxWarningWindow {
		t.Fatalf("expected warning clamped to %d, got %d", domain.MaxWarningWindow, cfg.Settings.TTS.WarningWindow)
	}

	if dropped != 1 {
		t.Fatalf("expected 1 dropped timer, got %d", dropped)
	}
	if _, ok := cfg.Timers["too_late"]; ok {
		t.Fatal("out-of-bounds timer should be dropped")
	}

	legacy := cfg.Timers["legacy"]
	if len(legacy.Messages) != 1 || legacy.Messages[0] != "old style" {
		t.Fatalf("expected legacy message promoted to variants, got %v", legacy.Messages)
	}
	if legacy.Category != domain.CategoryReminder {
		t.Fatalf("expected unknown category normalized to reminder, got %s", legacy.Category)
	}

	blank := cfg.Timers["blank"]
	if len(blank.Messages) != 1 || blank.Messages[0] != domain.PlaceholderMessage {
		t.Fatalf("expected placeholder for all-blank variants, got %v", blank.Messages)
	}
}

func TestSanitizeDropsOverlongMessages(t *testing.T) {
	long := strings.Repeat("x", domain.MaxMessageLen+1)
	raw := []byte(`{"timers": {"a": {"time": 10, "messages": ["` + long + `", "fits"]}}}`)

	cfg, _, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	got := cfg.Timers["a"].Messages
	if len(got) != 1 || got[0] != "fits" {
		t.Fatalf("expected only the in-limit message, got %v", got)
	}
}

func TestSanitizeRejectsEmptyCatalog(t *testing.T) {
	raw := []byte(`{"settings": {}, "timers": {"a": {"time": -5, "messages": ["never"]}}}`)

	_, _, err := Sanitize(raw)
	if !errors.Is(err, ErrNoValidTimers) {
		t.Fatalf("expected ErrNoValidTimers, got %v", err)
	}
}

func TestSanitizeBadJSON(t *testing.T) {
	if _, _, err := Sanitize([]byte("{nope")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestImportMergeKeepsAndOverrides(t *testing.T) {
	store := newTestStore(t)

	// Seed a custom timer in the default catalog.
	seed := domain.TimerEvent{TriggerSecond: 45, Messages: []string{"keep me"}, Category: domain.CategoryReminder}
	if err := store.UpsertTimer("guild-1", "", "mine", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	raw := []byte(`{"timers": {
		"imported": {"time": 300, "messages": ["new call"], "category": "objective"},
		"match_start": {"time": 0, "messages": ["replacement opener"], "category": "early_game"}
	}}`)

	summary, err := store.Import("guild-1", raw, true, true)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !summary.Merged {
		t.Fatal("expected merged summary")
	}

	timers := store.Timers("guild-1", "", "")
	if _, ok := timers["mine"]; !ok {
		t.Fatal("merge should keep existing timers")
	}
	if _, ok := timers["imported"]; !ok {
		t.Fatal("merge should add imported timers")
	}
	if got := timers["match_start"].Messages[0]; got != "replacement opener" {
		t.Fatalf("imported timer should win name collisions, got %q", got)
	}
}

func TestImportReplace(t *testing.T) {
	store := newTestStore(t)
	store.Timers("guild-1", "", "") // force defaults

	raw := []byte(`{"timers": {"only": {"time": 10, "messages": ["just this"]}}}`)
	if _, err := store.Import("guild-1", raw, false, false); err != nil {
		t.Fatalf("import: %v", err)
	}

	timers := store.Timers("guild-1", "", "")
	if len(timers) != 1 {
		t.Fatalf("replace import should drop the old catalog, got %d timers", len(timers))
	}
}
