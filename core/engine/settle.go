package engine

import "time"

// SettleDetector decides when the knob has gone quiet. It is pure state
// driven by the scheduler loop; the loop owns the actual timer. For a burst
// of events followed by silence exactly one settle signal fires, timed one
// quiet period after the last event.
type SettleDetector struct {
	quiet       time.Duration
	lastEventAt time.Time
	pending     bool
}

// NewSettleDetector creates a detector with the given quiet period.
func NewSettleDetector(quiet time.Duration) *SettleDetector {
	return &SettleDetector{quiet: quiet}
}

// Observe notes an event arrival and returns the delay after which the settle
// timer must next fire. Re-arming supersedes any previously pending signal.
func (d *SettleDetector) Observe(now time.Time) time.Duration {
	d.lastEventAt = now
	d.pending = true
	return d.quiet
}

// Expire handles a timer expiry at now. fired is true when this expiry is a
// valid one-shot settle signal. When the timer turns out to be stale because
// a newer event arrived after it was armed, rearm holds the remaining wait.
func (d *SettleDetector) Expire(now time.Time) (fired bool, rearm time.Duration) {
	if !d.pending {
		return false, 0
	}
	elapsed := now.Sub(d.lastEventAt)
	if elapsed < d.quiet {
		return false, d.quiet - elapsed
	}
	d.pending = false
	return true, 0
}

// Pending reports whether a settle signal is armed.
func (d *SettleDetector) Pending() bool { return d.pending }
