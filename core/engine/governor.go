package engine

import "time"

// RateGovernor enforces a hard ceiling on dispatch attempts per rolling
// one-second window. The slot for an attempt is reserved before the sink call
// returns, so the ceiling bounds attempts rather than successes.
type RateGovernor struct {
	window time.Duration
	stamps []time.Time
}

// NewRateGovernor creates a governor with a one-second rolling window.
func NewRateGovernor() *RateGovernor {
	return &RateGovernor{window: time.Second}
}

// Allow reports whether another attempt may start at now given the limit and
// reserves the slot when it may.
func (g *RateGovernor) Allow(now time.Time, limit int) bool {
	g.prune(now)
	if limit < 1 || len(g.stamps) >= limit {
		return false
	}
	g.stamps = append(g.stamps, now)
	return true
}

// InWindow returns the number of attempts recorded in the trailing window.
func (g *RateGovernor) InWindow(now time.Time) int {
	g.prune(now)
	return len(g.stamps)
}

func (g *RateGovernor) prune(now time.Time) {
	cutoff := now.Add(-g.window)
	i := 0
	for i < len(g.stamps) && !g.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		g.stamps = append(g.stamps[:0], g.stamps[i:]...)
	}
}
