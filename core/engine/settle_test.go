package engine

import (
	"testing"
	"time"
)

func TestSettleDetectorFiresOncePerBurst(t *testing.T) {
	d := NewSettleDetector(400 * time.Millisecond)
	base := time.Now()

	// Burst of events 20ms apart.
	var delay time.Duration
	for i := 0; i < 5; i++ {
		delay = d.Observe(base.Add(time.Duration(i) * 20 * time.Millisecond))
	}
	if delay != 400*time.Millisecond {
		t.Fatalf("rearm delay %v, want 400ms", delay)
	}

	// Expiry one quiet period after the last event fires exactly once.
	fired, _ := d.Expire(base.Add(80*time.Millisecond + 400*time.Millisecond))
	if !fired {
		t.Fatal("expected settle signal")
	}
	if d.Pending() {
		t.Fatal("detector still pending after firing")
	}
	fired, _ = d.Expire(base.Add(2 * time.Second))
	if fired {
		t.Fatal("second expiry fired without a new event")
	}
}

func TestSettleDetectorStaleTimerRearms(t *testing.T) {
	d := NewSettleDetector(400 * time.Millisecond)
	base := time.Now()

	d.Observe(base)
	// A newer event lands before the timer expires for the first one.
	d.Observe(base.Add(300 * time.Millisecond))

	fired, rearm := d.Expire(base.Add(400 * time.Millisecond))
	if fired {
		t.Fatal("stale expiry must not fire")
	}
	if rearm != 300*time.Millisecond {
		t.Fatalf("rearm %v, want 300ms", rearm)
	}

	fired, _ = d.Expire(base.Add(700 * time.Millisecond))
	if !fired {
		t.Fatal("expected settle signal after rearm")
	}
}

func TestSettleDetectorIdleExpiry(t *testing.T) {
	d := NewSettleDetector(400 * time.Millisecond)
	fired, rearm := d.Expire(time.Now())
	if fired || rearm != 0 {
		t.Fatalf("idle detector fired=%v rearm=%v", fired, rearm)
	}
}
