package domain

import "context"

// ConfigStore is the read side of the persisted per-destination configuration.
// The scheduler reads a fresh snapshot every tick; mutations happen through
// the concrete store, outside the scheduling path.
type ConfigStore interface {
	// Timers returns the events configured for a destination and mode.
	// An empty category means no filter. Never returns an error: unknown
	// destinations or modes yield an empty map.
	Timers(destination, mode string, category Category) map[string]TimerEvent
	// WarningWindow returns the per-destination eligibility window in
	// seconds, already clamped to [0, MaxWarningWindow].
	WarningWindow(destination string) int
	// Settings returns the destination's announcement settings.
	Settings(destination string) Settings
}

// Clip is a synthesized audio resource on disk. The playback layer owns its
// lifecycle and removes the file after playing.
type Clip struct {
	Path string
}

// Synthesizer converts text into a playable audio clip. Implementations can
// call any speech backend; failures are surfaced to the caller verbatim.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, settings TTSSettings) (*Clip, error)
}

// Transport establishes playback connections to destinations. The shipped
// binary uses a local audio device; a chat-platform voice client satisfies
// the same interface.
type Transport interface {
	Connect(ctx context.Context, destination string) (Connection, error)
}

// Connection is one live playback channel. Play blocks until the clip
// finishes or Stop interrupts it; at most one Play runs per connection.
type Connection interface {
	ID() string
	Destination() string
	Play(ctx context.Context, clip *Clip, volume float64) error
	Stop()
	Close() error
}

// Announcer is the scheduler-facing dispatch sink: fire-and-forget delivery
// of one spoken announcement to one destination.
type Announcer interface {
	Announce(ctx context.Context, destination, text string, settings Settings) error
	// Destinations lists the currently connected destination ids.
	Destinations() []string
}
