package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

// ClientOption configures the TTS client.
type ClientOption func(*Client)

// WithHTTPTimeout sets the HTTP client timeout for synthesis requests.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the synthesis endpoint. When set, the accent TLD is
// no longer used to pick the host. Intended for tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithTempDir sets where synthesized clips are written. Defaults to the
// system temp directory.
func WithTempDir(dir string) ClientOption {
	return func(c *Client) {
		c.tempDir = dir
	}
}

// WithCacheDir enables the on-disk audio cache at dir.
func WithCacheDir(dir string) ClientOption {
	return func(c *Client) {
		c.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are persisted to disk.
// Existing on-disk entries are still read when false.
func WithDiskWrite(enabled bool) ClientOption {
	return func(c *Client) {
		c.diskWrite = enabled
	}
}

// Client synthesizes speech through the public translate endpoint. The
// accent setting doubles as the endpoint's top-level domain, which is what
// gives each accent its regional voice. Identical requests are served from
// an AudioCache instead of hitting the network again.
type Client struct {
	httpClient *http.Client
	log        *logger.Logger
	cache      *AudioCache
	baseURL    string
	tempDir    string
	cacheDir   string
	diskWrite  bool
}

var _ domain.Synthesizer = (*Client)(nil)

// NewClient creates a TTS client.
func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		tempDir:    os.TempDir(),
		diskWrite:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Build the cache after options so cacheDir and diskWrite are settled.
	c.cache = NewAudioCache(c.cacheDir, c.diskWrite, log)
	return c
}

// Cache exposes the audio cache for stats reporting.
func (c *Client) Cache() *AudioCache {
	return c.cache
}

// Synthesize prepares text, fetches (or recalls) the MP3 for it and writes
// the audio to a uniquely named temp file. The caller owns the file and is
// expected to remove it after playback.
func (c *Client) Synthesize(ctx context.Context, text string, settings domain.TTSSettings) (*domain.Clip, error) {
	prepared := Prepare(text, settings)
	key := CacheKey(settings, prepared)

	audio, ok := c.cache.Get(key)
	if !ok {
		var err error
		audio, err = c.fetch(ctx, prepared, settings)
		if err != nil {
			return nil, err
		}
		c.cache.Put(key, audio)
	}

	path := filepath.Join(c.tempDir, "announce-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return nil, fmt.Errorf("writing clip: %w", err)
	}
	return &domain.Clip{Path: path}, nil
}

// fetch performs one synthesis request.
func (c *Client) fetch(ctx context.Context, text string, settings domain.TTSSettings) ([]byte, error) {
	endpoint := c.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://translate.google.%s/translate_tts", settings.Accent)
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("tl", settings.Language)
	if settings.Slow() {
		params.Set("ttsspeed", "0.24")
	} else {
		params.Set("ttsspeed", "1")
	}

	c.log.Debug("tts: synthesizing %d chars (lang=%s accent=%s slow=%t)",
		len(text), settings.Language, settings.Accent, settings.Slow())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	c.log.Debug("tts: got %d bytes of audio", len(audio))
	return audio, nil
}
