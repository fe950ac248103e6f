package metrics

import coremetrics "github.com/orthoctl/orthoctl/core/metrics"

// MultiSink fans engine events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatchAttempt forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordDispatchAttempt(ev coremetrics.DispatchAttemptEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatchAttempt(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTargetChange forwards target snapshots to sinks that record them.
func (m *MultiSink) RecordTargetChange(ev coremetrics.TargetChangedEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TargetRecorder); ok {
			if err := rec.RecordTargetChange(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBackoff forwards cooldown transitions to sinks that record them.
func (m *MultiSink) RecordBackoff(ev coremetrics.BackoffEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.BackoffRecorder); ok {
			if err := rec.RecordBackoff(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
