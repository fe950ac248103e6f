package engine

import (
	"sync"
	"time"

	"github.com/orthoctl/orthoctl/core/media"
)

// FeedbackSink receives every recorded target value immediately for local
// display, independent of whether it is ever dispatched upstream.
type FeedbackSink interface {
	TargetChanged(value int)
}

// EventBuffer holds the single most recent knob position. It is deliberately
// lossy: a new event replaces the previous one unconditionally, there is no
// queue. The buffer stays writable while a dispatch is in flight; the
// scheduler only holds the mutex for the duration of a read.
type EventBuffer struct {
	mu       sync.Mutex
	value    int
	at       time.Time
	has      bool
	feedback FeedbackSink
	updates  chan struct{}
}

// NewEventBuffer creates an empty buffer. feedback may be nil.
func NewEventBuffer(feedback FeedbackSink) *EventBuffer {
	return &EventBuffer{
		feedback: feedback,
		updates:  make(chan struct{}, 1),
	}
}

// Record replaces the stored target with the event's value. The feedback sink
// is notified synchronously before Record returns; the scheduler is poked
// through a coalescing channel so a burst of events wakes it at most once per
// loop iteration.
func (b *EventBuffer) Record(ev PositionEvent) {
	v := media.ClampPosition(ev.Value)
	at := ev.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}

	b.mu.Lock()
	b.value = v
	b.at = at
	b.has = true
	b.mu.Unlock()

	if b.feedback != nil {
		b.feedback.TargetChanged(v)
	}
	select {
	case b.updates <- struct{}{}:
	default:
	}
}

// Current returns the latest recorded value. ok is false until the first
// event arrives.
func (b *EventBuffer) Current() (value int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.has
}

// LastArrival returns the arrival time of the latest event.
func (b *EventBuffer) LastArrival() (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.at, b.has
}

// Updates exposes the wake-up channel consumed by the scheduler loop.
func (b *EventBuffer) Updates() <-chan struct{} {
	return b.updates
}
