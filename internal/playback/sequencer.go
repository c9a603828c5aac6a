package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// SequencerOption configures the sequencer.
type SequencerOption func(*Sequencer)

// WithConnectTimeout sets the per-destination connection deadline.
func WithConnectTimeout(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		s.connectTimeout = d
	}
}

// WithIdleTimeout sets how long a destination stays connected with nothing
// playing before it is torn down.
func WithIdleTimeout(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		s.idleTimeout = d
	}
}

// playSession is the per-destination playback state: one live connection,
// one playback cycle at a time, and an idle countdown that tears the
// connection down when the destination goes quiet.
type playSession struct {
	dest  string
	cycle sync.Mutex // serializes synthesis-to-cleanup cycles

	mu      sync.Mutex // guards conn and playing
	conn    domain.Connection
	playing bool
	idle    *Countdown
}

func (ps *playSession) connection() domain.Connection {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.conn
}

func (ps *playSession) setPlaying(v bool) {
	ps.mu.Lock()
	ps.playing = v
	ps.mu.Unlock()
}

// interrupt stops whatever is playing right now, if anything. The new
// announcement then takes the slot as soon as the old cycle unwinds.
func (ps *playSession) interrupt() {
	ps.mu.Lock()
	conn := ps.conn
	playing := ps.playing
	ps.mu.Unlock()

	if playing && conn != nil {
		conn.Stop()
	}
}

// Sequencer delivers spoken announcements to destinations, one at a time
// per destination. A new announcement never queues behind an old one: it
// interrupts the in-flight clip and plays instead. Connections are opened
// on demand and closed again after a period of silence, but only while the
// game clock is stopped — a quiet stretch mid-game is not a reason to
// drop the channel.
type Sequencer struct {
	transport      domain.Transport
	synth          domain.Synthesizer
	clockRunning   func() bool
	log            *logger.Logger
	connectTimeout time.Duration
	idleTimeout    time.Duration

	mu       sync.Mutex
	sessions map[string]*playSession
}

// Compile-time interface check.
var _ domain.Announcer = (*Sequencer)(nil)

// NewSequencer creates a sequencer. clockRunning reports whether the game
// clock is live; the idle countdown consults it before disconnecting.
func NewSequencer(transport domain.Transport, synth domain.Synthesizer, clockRunning func() bool, log *logger.Logger, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		transport:      transport,
		synth:          synth,
		clockRunning:   clockRunning,
		log:            log,
		connectTimeout: 20 * time.Second,
		idleTimeout:    300 * time.Second,
		sessions:       make(map[string]*playSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// session returns the playSession for dest, creating it if needed.
func (s *Sequencer) session(dest string) *playSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.sessions[dest]
	if !ok {
		ps = &playSession{dest: dest, idle: NewCountdown()}
		s.sessions[dest] = ps
	}
	return ps
}

// EnsureConnected opens a connection to dest if one isn't live already.
// Idempotent. Connection attempts are bounded by the connect timeout and
// surface domain.ErrConnectTimeout when they run out of time.
func (s *Sequencer) EnsureConnected(ctx context.Context, dest string) (domain.Connection, error) {
	ps := s.session(dest)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.conn != nil {
		return ps.conn, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	conn, err := s.transport.Connect(dialCtx, dest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Error("sequencer: connecting to %s: timed out after %s", dest, s.connectTimeout)
			return nil, domain.ErrConnectTimeout
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	}

	ps.conn = conn
	s.log.Info("sequencer: connected to %s (conn=%s)", dest, conn.ID())
	s.armIdle(ps)
	return conn, nil
}

// Reconnect drops any existing connection to dest and dials again.
func (s *Sequencer) Reconnect(ctx context.Context, dest string) (domain.Connection, error) {
	s.Disconnect(dest)
	return s.EnsureConnected(ctx, dest)
}

// Announce synthesizes text and plays it on dest. If something is already
// playing there it is interrupted, not queued behind. The playback slot is
// released and the synthesized clip removed from disk on every exit path.
func (s *Sequencer) Announce(ctx context.Context, dest, text string, settings domain.Settings) error {
	if _, err := s.EnsureConnected(ctx, dest); err != nil {
		return err
	}

	ps := s.session(dest)
	ps.interrupt()

	ps.cycle.Lock()
	defer ps.cycle.Unlock()
	ps.idle.Cancel()
	defer s.armIdle(ps)

	clip, err := s.synth.Synthesize(ctx, text, settings.TTS)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}
	defer s.discard(clip)

	conn := ps.connection()
	if conn == nil {
		return domain.ErrNotConnected
	}

	ps.setPlaying(true)
	err = conn.Play(ctx, clip, settings.Volume)
	ps.setPlaying(false)

	if err != nil {
		return fmt.Errorf("playing on %s: %w", dest, err)
	}
	s.log.Debug("sequencer: played on %s: %s", dest, text)
	return nil
}

// Disconnect closes the connection to dest, if any. Safe when not connected.
func (s *Sequencer) Disconnect(dest string) {
	s.mu.Lock()
	ps, ok := s.sessions[dest]
	if ok {
		delete(s.sessions, dest)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	ps.idle.Cancel()
	ps.interrupt()

	ps.mu.Lock()
	conn := ps.conn
	ps.conn = nil
	ps.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			s.log.Warn("sequencer: closing %s: %v", dest, err)
		}
		s.log.Info("sequencer: disconnected from %s", dest)
	}
}

// StopAll interrupts playback everywhere and drops every connection.
func (s *Sequencer) StopAll() {
	for _, dest := range s.Destinations() {
		s.Disconnect(dest)
	}
}

// Destinations lists the destinations with a live connection.
func (s *Sequencer) Destinations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	dests := make([]string, 0, len(s.sessions))
	for dest, ps := range s.sessions {
		if ps.connection() != nil {
			dests = append(dests, dest)
		}
	}
	return dests
}

// armIdle starts the teardown countdown for a session. When it fires with
// the clock still running the countdown re-arms instead of disconnecting.
func (s *Sequencer) armIdle(ps *playSession) {
	ps.idle.Arm(s.idleTimeout, func() {
		if s.clockRunning() {
			s.armIdle(ps)
			return
		}
		s.log.Info("sequencer: %s idle for %s, disconnecting", ps.dest, s.idleTimeout)
		s.Disconnect(ps.dest)
	})
}

// discard removes a played clip from disk.
func (s *Sequencer) discard(clip *domain.Clip) {
	if clip == nil || clip.Path == "" {
		return
	}
	if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("sequencer: removing clip %s: %v", clip.Path, err)
	}
}
