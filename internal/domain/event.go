// Package domain holds the core types and ports shared across the bot:
// timer events, per-destination settings, and the collaborator interfaces
// for configuration, speech synthesis and playback transport.
package domain

// Category tags a timer event with the game phase or purpose it belongs to.
type Category string

const (
	CategoryEarlyGame Category = "early_game"
	CategoryMidGame   Category = "mid_game"
	CategoryLateGame  Category = "late_game"
	CategoryObjective Category = "objective"
	CategoryBuff      Category = "buff"
	CategoryFarm      Category = "farm"
	CategoryReminder  Category = "reminder"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryEarlyGame,
	CategoryMidGame,
	CategoryLateGame,
	CategoryObjective,
	CategoryBuff,
	CategoryFarm,
	CategoryReminder,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory returns the category for s, falling back to
// CategoryReminder when s is unknown.
func NormalizeCategory(s string) Category {
	c := Category(s)
	if c.Valid() {
		return c
	}
	return CategoryReminder
}

// PlaceholderMessage is spoken when an event has no usable message variant.
const PlaceholderMessage = "Timer event"

// Limits enforced by the configuration layer. The catalog itself accepts
// whatever the store hands it; validation happens on import and edit.
const (
	MaxTriggerSecond = 3600 // one hour of game time
	MaxMessageLen    = 200
)

// TimerEvent is a single time-triggered announcement. The JSON shape matches
// the persisted configuration: {time, messages, category}, with the legacy
// singular "message" field still accepted on read.
type TimerEvent struct {
	TriggerSecond int      `json:"time"`
	Messages      []string `json:"messages,omitempty"`
	LegacyMessage string   `json:"message,omitempty"`
	Category      Category `json:"category"`
}

// Variants resolves the candidate spoken texts for the event. Never empty:
// falls back to the legacy single message, then to PlaceholderMessage.
func (e TimerEvent) Variants() []string {
	if len(e.Messages) > 0 {
		return e.Messages
	}
	if e.LegacyMessage != "" {
		return []string{e.LegacyMessage}
	}
	return []string{PlaceholderMessage}
}

// Announcement is one scheduled dispatch: the chosen text for an event that
// just became eligible on some destination.
type Announcement struct {
	Destination string
	Event       string
	Text        string
}
