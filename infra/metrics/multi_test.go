package metrics

import (
	"testing"
	"time"

	coremetrics "github.com/orthoctl/orthoctl/core/metrics"
)

type captureSink struct {
	attempts []coremetrics.DispatchAttemptEvent
	targets  []coremetrics.TargetChangedEvent
}

func (c *captureSink) RecordDispatchAttempt(ev coremetrics.DispatchAttemptEvent) error {
	c.attempts = append(c.attempts, ev)
	return nil
}

func (c *captureSink) RecordTargetChange(ev coremetrics.TargetChangedEvent) error {
	c.targets = append(c.targets, ev)
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	m := NewMultiSink(a, b, coremetrics.NopSink{})
	ev := coremetrics.DispatchAttemptEvent{ID: "x", Trigger: "tick", Outcome: "skipped", Time: time.Now()}
	if err := m.RecordDispatchAttempt(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(a.attempts) != 1 || len(b.attempts) != 1 {
		t.Fatalf("fanout missed a sink")
	}
	if err := m.RecordTargetChange(coremetrics.TargetChangedEvent{Value: 5, Time: time.Now()}); err != nil {
		t.Fatalf("target: %v", err)
	}
	if len(a.targets) != 1 || len(b.targets) != 1 {
		t.Fatalf("target fanout missed a sink")
	}
}
