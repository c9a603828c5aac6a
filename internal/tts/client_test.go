package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"

	"github.com/matchcaller/matchcaller/internal/domain"
	"github.com/matchcaller/matchcaller/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.New(logger.LevelOff, nil)
	opts = append([]ClientOption{
		WithBaseURL(srv.URL),
		WithTempDir(t.TempDir()),
	}, opts...)
	return NewClient(log, opts...), srv
}

func TestSynthesizeWritesClip(t *testing.T) {
	var gotQuery atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Write([]byte("fake-mp3-bytes"))
	})

	settings := domain.DefaultSettings().TTS
	clip, err := client.Synthesize(context.Background(), "enemy spotted", settings)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	data, err := os.ReadFile(clip.Path)
	if err != nil {
		t.Fatalf("reading clip: %v", err)
	}
	if string(data) != "fake-mp3-bytes" {
		t.Fatalf("clip content = %q", data)
	}

	q := gotQuery.Load().(url.Values)
	if got := q["tl"]; len(got) != 1 || got[0] != "en" {
		t.Errorf("tl = %v, want [en]", got)
	}
	if got := q["q"]; len(got) != 1 || got[0] != "enemy spotted" {
		t.Errorf("q = %v", got)
	}
	if got := q["ttsspeed"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("ttsspeed = %v, want [1]", got)
	}
}

func TestSynthesizeSlowBelowThreshold(t *testing.T) {
	var gotSpeed atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSpeed.Store(r.URL.Query().Get("ttsspeed"))
		w.Write([]byte("mp3"))
	})

	settings := domain.DefaultSettings().TTS
	settings.Speed = 0.6
	if _, err := client.Synthesize(context.Background(), "slow call", settings); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got := gotSpeed.Load().(string); got != "0.24" {
		t.Errorf("ttsspeed = %q, want 0.24", got)
	}
}

func TestSynthesizeCachesRepeats(t *testing.T) {
	var requests atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("mp3"))
	})

	ctx := context.Background()
	settings := domain.DefaultSettings().TTS
	for i := 0; i < 3; i++ {
		clip, err := client.Synthesize(ctx, "first blood", settings)
		if err != nil {
			t.Fatalf("synthesize %d: %v", i, err)
		}
		os.Remove(clip.Path)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected one backend request, got %d", got)
	}

	// A different accent is a different voice: fresh request.
	settings.Accent = "co.uk"
	if _, err := client.Synthesize(ctx, "first blood", settings); err != nil {
		t.Fatalf("synthesize uk: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected a cache miss on accent change, got %d requests", got)
	}
}

func TestSynthesizeEachCallGetsOwnFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	})

	ctx := context.Background()
	settings := domain.DefaultSettings().TTS
	c1, err := client.Synthesize(ctx, "go go go", settings)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	c2, err := client.Synthesize(ctx, "go go go", settings)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if c1.Path == c2.Path {
		t.Fatal("repeated synthesis must not share temp files")
	}
}

func TestSynthesizeServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Synthesize(context.Background(), "anything", domain.DefaultSettings().TTS)
	if err == nil {
		t.Fatal("expected an error on non-200 response")
	}
}

func TestDiskCacheSurvivesRestart(t *testing.T) {
	var requests atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("mp3"))
	}
	cacheDir := t.TempDir()

	c1, srv := newTestClient(t, handler, WithCacheDir(cacheDir))
	settings := domain.DefaultSettings().TTS
	if _, err := c1.Synthesize(context.Background(), "cached line", settings); err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	// Fresh client, same disk cache.
	log := logger.New(logger.LevelOff, nil)
	c2 := NewClient(log,
		WithBaseURL(srv.URL),
		WithTempDir(t.TempDir()),
		WithCacheDir(cacheDir),
	)
	if _, err := c2.Synthesize(context.Background(), "cached line", settings); err != nil {
		t.Fatalf("synthesize after restart: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected the disk cache to serve the second client, got %d requests", got)
	}
}
