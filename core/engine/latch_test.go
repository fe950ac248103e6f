package engine

import "testing"

func TestLatchEngagesWithinTolerance(t *testing.T) {
	l := NewLatch(3)
	l.Prime(50)

	// 127 maps to 100%, far from 50%.
	if l.Offer(127) {
		t.Fatal("engaged far from the latch point")
	}
	if l.Engaged() {
		t.Fatal("latch reports engaged")
	}
	// 64 maps to 50%.
	if !l.Offer(64) {
		t.Fatal("did not engage at the latch point")
	}
	if !l.Engaged() {
		t.Fatal("latch not engaged after matching")
	}
	// Once engaged everything passes.
	if !l.Offer(0) {
		t.Fatal("engaged latch rejected a value")
	}
}

func TestLatchEngagesImmediatelyWhenUnprimed(t *testing.T) {
	l := NewLatch(3)
	if !l.Offer(100) {
		t.Fatal("unprimed latch blocked the first value")
	}
}

func TestLatchPrimeAfterEngageIsIgnored(t *testing.T) {
	l := NewLatch(3)
	l.Offer(10)
	l.Prime(90)
	if !l.Offer(10) {
		t.Fatal("late prime re-armed the latch")
	}
}

func TestLatchDistance(t *testing.T) {
	l := NewLatch(3)
	l.Prime(50)
	if got := l.Distance(127); got != 50 {
		t.Fatalf("distance %d, want 50", got)
	}
	if got := l.Distance(64); got != 0 {
		t.Fatalf("distance %d, want 0", got)
	}
}
