package playback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// Audio parameters for the local device. The speech backend returns 24 kHz
// MP3s and the decoder always emits 16-bit stereo PCM.
const (
	SampleRate   = 24000
	ChannelCount = 2
)

// LocalTransport plays announcements on the machine's own audio device.
// It satisfies domain.Transport so the rest of the bot doesn't care whether
// a destination is a local speaker or a remote voice channel.
type LocalTransport struct {
	ctx *oto.Context
	log *logger.Logger
}

var _ domain.Transport = (*LocalTransport)(nil)

// NewLocalTransport initializes the system audio context. Returns an error
// if the audio device is unavailable.
func NewLocalTransport(log *logger.Logger) (*LocalTransport, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("initializing audio device: %w", err)
	}
	<-ready

	log.Debug("local transport initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &LocalTransport{ctx: otoCtx, log: log}, nil
}

// Connect returns a connection bound to the local device. The destination
// name is carried through for logging and scheduling only.
func (t *LocalTransport) Connect(_ context.Context, destination string) (domain.Connection, error) {
	return &localConnection{
		id:   uuid.NewString(),
		dest: destination,
		ctx:  t.ctx,
		log:  t.log,
	}, nil
}

type localConnection struct {
	id   string
	dest string
	ctx  *oto.Context
	log  *logger.Logger

	mu     sync.Mutex
	active *oto.Player
}

var _ domain.Connection = (*localConnection)(nil)

func (c *localConnection) ID() string          { return c.id }
func (c *localConnection) Destination() string { return c.dest }

// Play decodes the clip and plays it synchronously. Blocks until playback
// finishes, Stop is called, or ctx is cancelled.
func (c *localConnection) Play(ctx context.Context, clip *domain.Clip, volume float64) error {
	pcm, rate, err := decodeClip(clip.Path)
	if err != nil {
		return err
	}
	if rate != SampleRate {
		c.log.Warn("local: clip %s has sample rate %d, device expects %d", clip.Path, rate, SampleRate)
	}
	applyVolume(pcm, volume)

	player := c.ctx.NewPlayer(bytes.NewReader(pcm))

	c.mu.Lock()
	c.active = player
	c.mu.Unlock()

	player.Play()
	c.log.Debug("local: playing %d bytes of PCM on %s", len(pcm), c.dest)

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			c.clearActive()
			player.Close()
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	c.clearActive()
	return player.Close()
}

// Stop interrupts the currently playing clip, if any. Safe to call
// concurrently and when nothing is playing.
func (c *localConnection) Stop() {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if active != nil {
		active.Pause()
		c.log.Debug("local: playback interrupted on %s", c.dest)
	}
}

// Close stops playback. The audio context itself is shared and stays open.
func (c *localConnection) Close() error {
	c.Stop()
	return nil
}

func (c *localConnection) clearActive() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

// decodeClip reads an MP3 file into 16-bit LE stereo PCM.
func decodeClip(path string) ([]byte, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening clip: %w", err)
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding clip %s: %w", path, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("reading pcm from %s: %w", path, err)
	}
	return pcm, dec.SampleRate(), nil
}

// applyVolume scales int16 LE samples in place. volume is expected in [0, 1].
func applyVolume(pcm []byte, volume float64) {
	if volume >= 1 {
		return
	}
	if volume < 0 {
		volume = 0
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		scaled := int16(float64(sample) * volume)
		pcm[i] = byte(uint16(scaled))
		pcm[i+1] = byte(uint16(scaled) >> 8)
	}
}
