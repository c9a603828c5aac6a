package playback

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownFires(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown()
	c.Arm(10*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly one fire, got %d", got)
	}
}

func TestCountdownCancel(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown()
	c.Arm(10*time.Millisecond, func() { fired.Add(1) })
	c.Cancel()

	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("expected no fire after cancel, got %d", got)
	}
}

func TestCountdownRearmReplacesPending(t *testing.T) {
	var first, second atomic.Int32
	c := NewCountdown()
	c.Arm(20*time.Millisecond, func() { first.Add(1) })
	c.Arm(10*time.Millisecond, func() { second.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if got := first.Load(); got != 0 {
		t.Fatalf("stale callback fired %d times", got)
	}
	if got := second.Load(); got != 1 {
		t.Fatalf("expected replacement to fire once, got %d", got)
	}
}

func TestCountdownCancelUnarmed(t *testing.T) {
	c := NewCountdown()
	c.Cancel() // must not panic
	c.Cancel()
}
