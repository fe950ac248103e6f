package engine

import "github.com/orthoctl/orthoctl/core/media"

// Latch keeps the knob disengaged until its position passes within tolerance
// of the application's own volume, so picking up the remote never yanks
// playback to wherever the hardware happens to rest. When the application
// volume is unknown the latch engages on the first movement.
//
// Offer and Prime are called from the input goroutine only.
type Latch struct {
	tolerance  int
	appPercent int
	known      bool
	engaged    bool
}

// NewLatch creates a disengaged latch with the given tolerance in percent.
func NewLatch(tolerance int) *Latch {
	return &Latch{tolerance: tolerance}
}

// Prime records the application volume the knob must meet before engaging.
// Priming after the latch engaged has no effect.
func (l *Latch) Prime(appPercent int) {
	if l.engaged {
		return
	}
	l.appPercent = appPercent
	l.known = true
}

// Engaged reports whether the knob currently drives the volume.
func (l *Latch) Engaged() bool { return l.engaged }

// Offer feeds a raw knob position and reports whether it may be forwarded to
// the engine. The first position within tolerance engages the latch for good.
func (l *Latch) Offer(value int) bool {
	if l.engaged {
		return true
	}
	if !l.known {
		l.engaged = true
		return true
	}
	pct := media.PercentFromPosition(value)
	diff := pct - l.appPercent
	if diff < 0 {
		diff = -diff
	}
	if diff <= l.tolerance {
		l.engaged = true
		return true
	}
	return false
}

// Distance returns how far in percent the given position is from the latch
// point. Useful for logging while the latch waits.
func (l *Latch) Distance(value int) int {
	d := media.PercentFromPosition(value) - l.appPercent
	if d < 0 {
		return -d
	}
	return d
}
