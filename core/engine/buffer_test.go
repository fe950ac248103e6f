package engine

import (
	"testing"
	"time"
)

type recordingFeedback struct {
	values []int
}

func (f *recordingFeedback) TargetChanged(v int) { f.values = append(f.values, v) }

func TestEventBufferLatestWins(t *testing.T) {
	buf := NewEventBuffer(nil)
	if _, ok := buf.Current(); ok {
		t.Fatal("empty buffer reported a value")
	}
	buf.Record(PositionEvent{Value: 10})
	buf.Record(PositionEvent{Value: 20})
	buf.Record(PositionEvent{Value: 30})
	v, ok := buf.Current()
	if !ok || v != 30 {
		t.Fatalf("got %d/%v, want 30", v, ok)
	}
}

func TestEventBufferFeedbackIsSynchronous(t *testing.T) {
	fb := &recordingFeedback{}
	buf := NewEventBuffer(fb)
	buf.Record(PositionEvent{Value: 5})
	buf.Record(PositionEvent{Value: 7})
	if len(fb.values) != 2 || fb.values[0] != 5 || fb.values[1] != 7 {
		t.Fatalf("feedback saw %v, want [5 7]", fb.values)
	}
}

func TestEventBufferClampsOutOfRange(t *testing.T) {
	buf := NewEventBuffer(nil)
	buf.Record(PositionEvent{Value: 200})
	if v, _ := buf.Current(); v != 127 {
		t.Fatalf("got %d, want 127", v)
	}
	buf.Record(PositionEvent{Value: -3})
	if v, _ := buf.Current(); v != 0 {
		t.Fatalf("got %d, want 0", v)
	}
}

func TestEventBufferCoalescesWakeups(t *testing.T) {
	buf := NewEventBuffer(nil)
	for i := 0; i < 10; i++ {
		buf.Record(PositionEvent{Value: i})
	}
	select {
	case <-buf.Updates():
	default:
		t.Fatal("expected a pending wakeup")
	}
	select {
	case <-buf.Updates():
		t.Fatal("burst produced more than one wakeup")
	default:
	}
}

func TestEventBufferLastArrival(t *testing.T) {
	buf := NewEventBuffer(nil)
	if _, ok := buf.LastArrival(); ok {
		t.Fatal("empty buffer reported an arrival time")
	}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	buf.Record(PositionEvent{Value: 1, ReceivedAt: at})
	got, ok := buf.LastArrival()
	if !ok || !got.Equal(at) {
		t.Fatalf("got %v/%v, want %v", got, ok, at)
	}
}
