package metrics

import "time"

// DispatchAttemptEvent describes one dispatch attempt of the volume engine.
type DispatchAttemptEvent struct {
	ID      string
	Value   int
	Trigger string
	Outcome string
	Latency time.Duration
	Time    time.Time
}

// MetricsSink records dispatch attempts for observability purposes.
type MetricsSink interface {
	RecordDispatchAttempt(ev DispatchAttemptEvent) error
}

// TargetChangedEvent is a snapshot of the desired knob target.
type TargetChangedEvent struct {
	Value int
	Time  time.Time
}

// TargetRecorder records target changes.
type TargetRecorder interface {
	RecordTargetChange(ev TargetChangedEvent) error
}

// BackoffEvent captures a cooldown transition after a rate-limit rejection.
type BackoffEvent struct {
	ConsecutiveRejections int
	ResumeAt              time.Time
	Time                  time.Time
}

// BackoffRecorder records cooldown transitions.
type BackoffRecorder interface {
	RecordBackoff(ev BackoffEvent) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatchAttempt(DispatchAttemptEvent) error { return nil }

func (NopSink) RecordTargetChange(TargetChangedEvent) error { return nil }

func (NopSink) RecordBackoff(BackoffEvent) error { return nil }
