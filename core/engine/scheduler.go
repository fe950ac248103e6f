package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orthoctl/orthoctl/core/logger"
	"github.com/orthoctl/orthoctl/core/media"
	"github.com/orthoctl/orthoctl/core/metrics"
	"github.com/orthoctl/orthoctl/internal/eventbus"
)

// Scheduler coalesces knob positions and forwards them to the volume sink at
// a bounded rate. Two triggers request dispatch attempts: a periodic tick
// that provides continuous feedback cadence, and a one-shot settle signal
// that guarantees the final resting value is sent promptly.
//
// All timer state is owned by the Run goroutine; the only shared state is the
// event buffer, which carries its own lock. Sink calls are single-flight:
// while one is in progress no other attempt is issued, but new positions keep
// landing in the buffer.
type Scheduler struct {
	cfg     Config
	buf     *EventBuffer
	settle  *SettleDetector
	gov     *RateGovernor
	backoff *BackoffController
	sink    media.VolumeSink
	metrics metrics.MetricsSink
	bus     eventbus.EventBus
	log     logger.Logger

	lastAccepted int
	hasAccepted  bool
}

// NewScheduler creates a scheduler for the given buffer and sink. The metrics
// sink and bus may be nil. The config must have been validated.
func NewScheduler(cfg Config, buf *EventBuffer, sink media.VolumeSink, mSink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Scheduler, error) {
	if buf == nil || sink == nil {
		return nil, fmt.Errorf("engine: nil buffer or sink provided to NewScheduler")
	}
	if mSink == nil {
		mSink = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Scheduler{
		cfg:     cfg,
		buf:     buf,
		settle:  NewSettleDetector(cfg.SettleQuiet()),
		gov:     NewRateGovernor(),
		backoff: NewBackoffController(cfg.BackoffCooldown()),
		sink:    sink,
		metrics: mSink,
		bus:     bus,
		log:     log,
	}, nil
}

// Run drives the dispatch loop until the context is cancelled. Ticks, settle
// expiries and buffer wake-ups are merged into this single loop so no state
// needs further locking.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	settleTimer := time.NewTimer(s.cfg.SettleQuiet())
	if !settleTimer.Stop() {
		<-settleTimer.C
	}
	defer settleTimer.Stop()

	s.log.Infof("dispatch scheduler started (tick %s, quiet %s, ceiling %d/s)",
		s.cfg.TickInterval(), s.cfg.SettleQuiet(), s.cfg.MaxCallsPerSecond)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.buf.Updates():
			d := s.settle.Observe(time.Now())
			if !settleTimer.Stop() {
				select {
				case <-settleTimer.C:
				default:
				}
			}
			settleTimer.Reset(d)
		case <-ticker.C:
			s.attempt(ctx, time.Now(), TriggerTick)
		case <-settleTimer.C:
			now := time.Now()
			fired, rearm := s.settle.Expire(now)
			if fired {
				s.attempt(ctx, now, TriggerSettle)
			} else if rearm > 0 {
				settleTimer.Reset(rearm)
			}
		}
	}
}

// attempt runs the permission chain for one trigger and, if granted, hands
// the current target to the sink. A skipped attempt is a planned outcome, not
// an error.
func (s *Scheduler) attempt(ctx context.Context, now time.Time, trig Trigger) {
	value, ok := s.buf.Current()
	if !ok {
		return
	}
	if s.hasAccepted && value == s.lastAccepted {
		// Target already synced, nothing to send until the knob moves.
		return
	}

	rec := DispatchRecord{ID: uuid.NewString(), Value: value, Trigger: trig, SentAt: now}

	if s.backoff.CoolingDown(now) {
		rec.Outcome = RecordSkipped
		s.log.Debugw("dispatch skipped, cooling down", map[string]any{
			"value":     value,
			"trigger":   trig.String(),
			"resume_at": s.backoff.ResumeAt(),
		})
		s.finish(rec)
		return
	}
	if !s.gov.Allow(now, s.backoff.EffectiveLimit(s.cfg.MaxCallsPerSecond)) {
		rec.Outcome = RecordSkipped
		s.log.Debugf("dispatch skipped, ceiling reached (%d in window)", s.gov.InWindow(now))
		s.finish(rec)
		return
	}

	outcome, err := s.sink.SetVolume(ctx, value)
	rec.Latency = time.Since(now)

	switch outcome {
	case media.Accepted:
		s.backoff.Accept()
		s.lastAccepted = value
		s.hasAccepted = true
		rec.Outcome = RecordAccepted
		s.log.Debugf("dispatched %d (%s) in %s", value, trig, rec.Latency)
	case media.Rejected:
		s.backoff.Reject(time.Now())
		rec.Outcome = RecordRejected
		s.log.Warnf("rate limited, pausing dispatch until %s (rejection #%d)",
			s.backoff.ResumeAt().Format(time.RFC3339), s.backoff.ConsecutiveRejections())
		if rec2, ok := s.metrics.(metrics.BackoffRecorder); ok {
			_ = rec2.RecordBackoff(metrics.BackoffEvent{
				ConsecutiveRejections: s.backoff.ConsecutiveRejections(),
				ResumeAt:              s.backoff.ResumeAt(),
				Time:                  time.Now(),
			})
		}
	default:
		rec.Outcome = RecordFailed
		s.log.Errorf("dispatch of %d failed: %v", value, err)
	}
	s.finish(rec)
}

func (s *Scheduler) finish(rec DispatchRecord) {
	if s.bus != nil {
		s.bus.Publish(rec)
	}
	if err := s.metrics.RecordDispatchAttempt(metrics.DispatchAttemptEvent{
		ID:      rec.ID,
		Value:   rec.Value,
		Trigger: rec.Trigger.String(),
		Outcome: rec.Outcome.String(),
		Latency: rec.Latency,
		Time:    rec.SentAt,
	}); err != nil {
		s.log.Errorf("metrics record: %v", err)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
