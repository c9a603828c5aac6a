package config

import (
	"path/filepath"
	"testing"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	return NewStore(filepath.Join(t.TempDir(), "configs.json"), log)
}

func TestDefaultsCreatedOnFirstAccess(t *testing.T) {
	store := newTestStore(t)

	timers := store.Timers("guild-1", "", "")
	if len(timers) == 0 {
		t.Fatal("expected default catalog for unknown destination")
	}
	if _, ok := timers["match_start"]; !ok {
		t.Fatal("expected match_start in default catalog")
	}
	if got := store.WarningWindow("guild-1"); got != domain.DefaultWarning {
		t.Fatalf("expected default warning window %d, got %d", domain.DefaultWarning, got)
	}
	if got := store.Settings("guild-1").Volume; got != 1.0 {
		t.Fatalf("expected default volume 1.0, got %v", got)
	}
}

func TestTimersCategoryFilter(t *testing.T) {
	store := newTestStore(t)

	all := store.Timers("guild-1", "", "")
	buffs := store.Timers("guild-1", "", domain.CategoryBuff)

	if len(buffs) == 0 || len(buffs) >= len(all) {
		t.Fatalf("expected a proper subset for buff filter, got %d of %d", len(buffs), len(all))
	}
	for name, ev := range buffs {
		if ev.Category != domain.CategoryBuff {
			t.Fatalf("timer %s has category %s, want buff", name, ev.Category)
		}
	}
}

func TestUnknownModeIsEmpty(t *testing.T) {
	store := newTestStore(t)

	if timers := store.Timers("guild-1", "turbo", ""); len(timers) != 0 {
		t.Fatalf("expected empty map for unknown mode, got %d timers", len(timers))
	}
}

func TestUpsertTimerModes(t *testing.T) {
	store := newTestStore(t)

	ev := domain.TimerEvent{
		TriggerSecond: 90,
		Messages:      []string{"Turbo objective up"},
		Category:      domain.CategoryObjective,
	}
	if err := store.UpsertTimer("guild-1", "turbo", "turbo_objective", ev); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	turbo := store.Timers("guild-1", "turbo", "")
	if len(turbo) != 1 {
		t.Fatalf("expected 1 turbo timer, got %d", len(turbo))
	}
	// The standard catalog must be untouched.
	if _, ok := store.Timers("guild-1", "", "")["turbo_objective"]; ok {
		t.Fatal("turbo timer leaked into the standard catalog")
	}
}

func TestUpsertTimerRejectsBadTrigger(t *testing.T) {
	store := newTestStore(t)

	bad := domain.TimerEvent{TriggerSecond: 9000, Messages: []string{"way too late"}}
	if err := store.UpsertTimer("guild-1", "", "too_late", bad); err == nil {
		t.Fatal("expected error for out-of-bounds trigger")
	}
}

func TestAddMessageAccumulatesVariants(t *testing.T) {
	store := newTestStore(t)

	for _, msg := range []string{"first call", "second call", "first call"} {
		if err := store.AddMessage("guild-1", "", "my_call", 60, msg, domain.CategoryReminder); err != nil {
			t.Fatalf("add message: %v", err)
		}
	}

	ev := store.Timers("guild-1", "", "")["my_call"]
	if len(ev.Messages) != 2 {
		t.Fatalf("expected 2 distinct variants, got %v", ev.Messages)
	}
}

func TestRemoveMessageFallsBackToPlaceholder(t *testing.T) {
	store := newTestStore(t)

	ev := domain.TimerEvent{TriggerSecond: 60, Messages: []string{"only one"}}
	if err := store.UpsertTimer("guild-1", "", "solo", ev); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	removed, err := store.RemoveMessage("guild-1", "", "solo", 0)
	if err != nil {
		t.Fatalf("remove message: %v", err)
	}
	if removed != "only one" {
		t.Fatalf("expected removed text, got %q", removed)
	}

	got := store.Timers("guild-1", "", "")["solo"]
	if len(got.Messages) != 1 || got.Messages[0] != domain.PlaceholderMessage {
		t.Fatalf("expected placeholder fallback, got %v", got.Messages)
	}
}

func TestRemoveTimer(t *testing.T) {
	store := newTestStore(t)

	store.Timers("guild-1", "", "") // force defaults
	if !store.RemoveTimer("guild-1", "", "match_start") {
		t.Fatal("expected removal of existing timer")
	}
	if store.RemoveTimer("guild-1", "", "match_start") {
		t.Fatal("second removal should report not found")
	}
}

func TestSettingsClamping(t *testing.T) {
	store := newTestStore(t)

	if got := store.SetWarningWindow("guild-1", 500); got != domain.MaxWarningWindow {
		t.Fatalf("expected warning clamp to %d, got %d", domain.MaxWarningWindow, got)
	}
	if got := store.SetVolume("guild-1", 3.5); got != 1.0 {
		t.Fatalf("expected volume clamp to 1.0, got %v", got)
	}
	if err := store.SetSpeed("guild-1", 5.0); err == nil {
		t.Fatal("expected error for out-of-range speed")
	}
	if _, err := store.SetVoice("guild-1", "en", "nope"); err == nil {
		t.Fatal("expected error for invalid voice pair")
	}
	if name, err := store.SetVoice("guild-1", "fr", "ca"); err != nil || name == "" {
		t.Fatalf("expected valid voice pair, got %q, %v", name, err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs.json")
	log := logger.New(logger.LevelOff, nil)

	store := NewStore(path, log)
	ev := domain.TimerEvent{TriggerSecond: 75, Messages: []string{"custom call"}, Category: domain.CategoryReminder}
	if err := store.UpsertTimer("guild-1", "", "custom", ev); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	store.SetWarningWindow("guild-1", 15)

	// A second store reading the same file sees the committed state.
	reloaded := NewStore(path, log)
	got, ok := reloaded.Timers("guild-1", "", "")["custom"]
	if !ok {
		t.Fatal("expected custom timer after reload")
	}
	if got.TriggerSecond != 75 || got.Messages[0] != "custom call" {
		t.Fatalf("unexpected reloaded timer: %+v", got)
	}
	if reloaded.WarningWindow("guild-1") != 15 {
		t.Fatalf("expected warning window 15 after reload, got %d", reloaded.WarningWindow("guild-1"))
	}
}
