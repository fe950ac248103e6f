package engine

import "time"

// BackoffController pauses all outbound calls after an upstream rate-limit
// rejection. No retry happens during the cooldown: immediate retries compound
// rejections on the upstream limiter. After the cooldown the controller
// resumes at a reduced ceiling until a dispatch is accepted again.
type BackoffController struct {
	cooldown   time.Duration
	resumeAt   time.Time
	rejections int
}

// NewBackoffController creates a controller with the given cooldown.
func NewBackoffController(cooldown time.Duration) *BackoffController {
	return &BackoffController{cooldown: cooldown}
}

// CoolingDown reports whether dispatch is currently blocked. The transition
// back to normal is implicit once now reaches resumeAt; the periodic tick
// re-evaluates it, no dedicated resume timer is needed.
func (b *BackoffController) CoolingDown(now time.Time) bool {
	return now.Before(b.resumeAt)
}

// Reject records a rate-limit rejection. A rejection arriving during an
// active cooldown restarts the window from the new rejection time instead of
// stacking a second timer.
func (b *BackoffController) Reject(now time.Time) {
	b.rejections++
	b.resumeAt = now.Add(b.cooldown)
}

// Accept records a successful dispatch, restoring the full rate.
func (b *BackoffController) Accept() {
	b.rejections = 0
}

// ConsecutiveRejections returns the rejection count since the last success.
func (b *BackoffController) ConsecutiveRejections() int { return b.rejections }

// ResumeAt returns the end of the current cooldown window.
func (b *BackoffController) ResumeAt() time.Time { return b.resumeAt }

// EffectiveLimit halves the per-second ceiling for every consecutive
// rejection, floored at one call per second. With no rejections on record the
// base ceiling applies unchanged.
func (b *BackoffController) EffectiveLimit(base int) int {
	if b.rejections <= 0 {
		return base
	}
	shift := b.rejections
	if shift > 6 {
		shift = 6
	}
	limit := base >> uint(shift)
	if limit < 1 {
		limit = 1
	}
	return limit
}
