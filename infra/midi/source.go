// Package midi reads knob positions from a hardware MIDI controller (an
// Ortho Remote or anything emitting control-change messages) and feeds them
// to the engine. The port is watched continuously: the source waits for the
// device to appear, reopens it after Bluetooth drops, and optionally sends a
// vendor SysEx handshake on connect.
package midi

import (
	"context"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/orthoctl/orthoctl/core/engine"
	"github.com/orthoctl/orthoctl/infra/logger"
)

// handshake is the vendor SysEx message the Ortho Remote expects on connect.
var handshake = []byte{0x00, 0x20, 0x76, 0x02, 0x00, 0x02, 0x00}

// Source is a MIDI input source.
type Source struct {
	cfg         Config
	log         logger.Logger
	onPosition  func(engine.PositionEvent)
	onPlayPause func()
}

// NewSource creates a source delivering knob positions to onPosition and
// note-on presses to onPlayPause. Either callback may be nil.
func NewSource(cfg Config, onPosition func(engine.PositionEvent), onPlayPause func()) *Source {
	cfg.SetDefaults()
	return &Source{
		cfg:         cfg,
		log:         logger.New("midi"),
		onPosition:  onPosition,
		onPlayPause: onPlayPause,
	}
}

// Run watches for the configured port and pumps its messages until the
// context is cancelled.
func (s *Source) Run(ctx context.Context) error {
	drv, err := rtmididrv.New()
	if err != nil {
		return err
	}
	defer drv.Close()

	for {
		in, ok := s.findIn(drv)
		if !ok {
			s.log.Infof("waiting for MIDI port %q", s.cfg.PortName)
			if !sleep(ctx, s.cfg.PollInterval()) {
				return nil
			}
			continue
		}

		s.log.Infof("MIDI port %q opened, turn the knob to test the connection", in.String())
		stop, err := gomidi.ListenTo(in, s.handle, gomidi.UseSysEx())
		if err != nil {
			s.log.Errorf("listen on %q: %v", in.String(), err)
			if !sleep(ctx, s.cfg.PollInterval()) {
				return nil
			}
			continue
		}

		if s.cfg.SysexEnabled {
			s.sendHandshake(drv)
		}

		// Watch for the port disappearing (Bluetooth drop) or shutdown.
		for {
			if !sleep(ctx, s.cfg.PollInterval()) {
				stop()
				return nil
			}
			if _, still := s.findIn(drv); !still {
				s.log.Warnf("MIDI port %q disappeared, reconnecting", s.cfg.PortName)
				stop()
				break
			}
		}
	}
}

// handle decodes a single incoming MIDI message. Control change carries the
// absolute knob position; note-on maps to play/pause.
func (s *Source) handle(msg gomidi.Message, _ int32) {
	var ch, cc, val uint8
	var key, vel uint8
	switch {
	case msg.GetControlChange(&ch, &cc, &val):
		if s.onPosition != nil {
			s.onPosition(engine.PositionEvent{Value: int(val), ReceivedAt: time.Now()})
		}
	case msg.GetNoteStart(&ch, &key, &vel):
		if s.onPlayPause != nil {
			s.onPlayPause()
		}
	}
}

func (s *Source) findIn(drv *rtmididrv.Driver) (drivers.In, bool) {
	ins, err := drv.Ins()
	if err != nil {
		s.log.Errorf("list MIDI inputs: %v", err)
		return nil, false
	}
	want := strings.ToLower(s.cfg.PortName)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), want) {
			return in, true
		}
	}
	return nil, false
}

func (s *Source) sendHandshake(drv *rtmididrv.Driver) {
	outs, err := drv.Outs()
	if err != nil {
		s.log.Errorf("list MIDI outputs: %v", err)
		return
	}
	want := strings.ToLower(s.cfg.PortName)
	for _, out := range outs {
		if !strings.Contains(strings.ToLower(out.String()), want) {
			continue
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			s.log.Errorf("open MIDI output %q: %v", out.String(), err)
			return
		}
		if err := send(gomidi.SysEx(handshake)); err != nil {
			s.log.Errorf("send handshake: %v", err)
			return
		}
		s.log.Infof("SysEx handshake sent to %q", out.String())
		return
	}
	s.log.Warnf("no MIDI output matching %q for handshake", s.cfg.PortName)
}

// sleep waits for d or the context, reporting false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
