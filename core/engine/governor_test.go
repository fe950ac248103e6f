package engine

import (
	"testing"
	"time"
)

func TestRateGovernorCeiling(t *testing.T) {
	g := NewRateGovernor()
	now := time.Now()
	for i := 0; i < 4; i++ {
		if !g.Allow(now.Add(time.Duration(i)*10*time.Millisecond), 4) {
			t.Fatalf("attempt %d denied below the ceiling", i)
		}
	}
	if g.Allow(now.Add(50*time.Millisecond), 4) {
		t.Fatal("fifth attempt allowed inside the window")
	}
}

func TestRateGovernorWindowSlides(t *testing.T) {
	g := NewRateGovernor()
	now := time.Now()
	for i := 0; i < 4; i++ {
		g.Allow(now, 4)
	}
	if g.Allow(now.Add(900*time.Millisecond), 4) {
		t.Fatal("allowed before the oldest slot expired")
	}
	if !g.Allow(now.Add(1100*time.Millisecond), 4) {
		t.Fatal("denied after the window slid past the burst")
	}
	if got := g.InWindow(now.Add(1100 * time.Millisecond)); got != 1 {
		t.Fatalf("in-window count %d, want 1", got)
	}
}

func TestRateGovernorReservesSlotForSlowCalls(t *testing.T) {
	g := NewRateGovernor()
	now := time.Now()
	// Slot reserved at attempt start; a second attempt during a slow
	// in-flight call must see it.
	if !g.Allow(now, 1) {
		t.Fatal("first attempt denied")
	}
	if g.Allow(now.Add(time.Millisecond), 1) {
		t.Fatal("slot not reserved while call in flight")
	}
}

func TestRateGovernorZeroLimit(t *testing.T) {
	g := NewRateGovernor()
	if g.Allow(time.Now(), 0) {
		t.Fatal("limit 0 must deny everything")
	}
}
