package engine

import "time"

// PositionEvent is one absolute knob position as produced by an input source.
// Events are never merged; a newer event supersedes the previous one.
type PositionEvent struct {
	Value      int
	ReceivedAt time.Time
}

// Trigger identifies what prompted a dispatch attempt.
type Trigger int

const (
	// TriggerTick is the periodic heartbeat attempt.
	TriggerTick Trigger = iota
	// TriggerSettle is the one-shot attempt fired after the knob went quiet.
	TriggerSettle
)

func (t Trigger) String() string {
	if t == TriggerSettle {
		return "settle"
	}
	return "tick"
}

// RecordOutcome classifies a dispatch attempt for accounting purposes.
type RecordOutcome int

const (
	RecordAccepted RecordOutcome = iota
	RecordRejected
	RecordFailed
	RecordSkipped
)

func (o RecordOutcome) String() string {
	switch o {
	case RecordAccepted:
		return "accepted"
	case RecordRejected:
		return "rejected"
	case RecordFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// DispatchRecord describes one dispatch attempt. Records are published on the
// event bus and handed to the metrics sink; the scheduler itself keeps no
// history beyond the governor's rolling window.
type DispatchRecord struct {
	ID      string
	Value   int
	Trigger Trigger
	SentAt  time.Time
	Outcome RecordOutcome
	Latency time.Duration
}

// TargetUpdate is published on the event bus whenever a new position is
// recorded, independent of whether it will ever be dispatched.
type TargetUpdate struct {
	Value      int
	ReceivedAt time.Time
}
