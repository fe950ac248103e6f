package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/orthoctl/orthoctl/core/engine"
)

func TestHandleControlChange(t *testing.T) {
	var got []engine.PositionEvent
	s := NewSource(Config{PortName: "ortho remote"}, func(ev engine.PositionEvent) {
		got = append(got, ev)
	}, nil)

	s.handle(gomidi.ControlChange(0, 1, 100), 0)
	s.handle(gomidi.ControlChange(0, 1, 127), 0)

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Value != 100 || got[1].Value != 127 {
		t.Fatalf("wrong values: %+v", got)
	}
	if got[0].ReceivedAt.IsZero() {
		t.Fatalf("missing arrival time")
	}
}

func TestHandleNoteOnTogglesPlayback(t *testing.T) {
	toggles := 0
	s := NewSource(Config{PortName: "ortho remote"}, nil, func() { toggles++ })

	s.handle(gomidi.NoteOn(0, 60, 127), 0)
	if toggles != 1 {
		t.Fatalf("expected toggle, got %d", toggles)
	}
}

func TestHandleIgnoresOtherMessages(t *testing.T) {
	events := 0
	toggles := 0
	s := NewSource(Config{PortName: "x"}, func(engine.PositionEvent) { events++ }, func() { toggles++ })

	s.handle(gomidi.NoteOff(0, 60), 0)
	s.handle(gomidi.Pitchbend(0, 128), 0)

	if events != 0 || toggles != 0 {
		t.Fatalf("unexpected callbacks: events=%d toggles=%d", events, toggles)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if cfg.PollIntervalMs != 1000 {
		t.Fatalf("default poll interval = %d", cfg.PollIntervalMs)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing port name")
	}
	cfg.PortName = "ortho remote"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
