package app

import (
	"context"
	"fmt"
	"time"

	"github.com/orthoctl/orthoctl/config"
	"github.com/orthoctl/orthoctl/core/engine"
	"github.com/orthoctl/orthoctl/core/media"
	coremetrics "github.com/orthoctl/orthoctl/core/metrics"
	"github.com/orthoctl/orthoctl/infra/logger"
	"github.com/orthoctl/orthoctl/infra/metrics"
	"github.com/orthoctl/orthoctl/infra/midi"
	"github.com/orthoctl/orthoctl/infra/mqttinput"
	"github.com/orthoctl/orthoctl/infra/spotify"
	"github.com/orthoctl/orthoctl/internal/eventbus"
)

// inputSource is the common shape of the MIDI and MQTT knob listeners.
type inputSource interface {
	Run(ctx context.Context) error
}

// Service wires the knob input, the dispatch engine and the volume sink
// together and owns their lifecycles.
type Service struct {
	scheduler   *engine.Scheduler
	input       inputSource
	sink        *spotify.Client
	buffer      *engine.EventBuffer
	latch       *engine.Latch
	bus         eventbus.EventBus
	mSink       coremetrics.MetricsSink
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// feedback logs every accepted knob position as it arrives and forwards it to
// the metric sinks. It runs synchronously on the input path, so it must not
// block.
type feedback struct {
	log   logger.Logger
	mSink coremetrics.MetricsSink
	bus   eventbus.EventBus
}

func (f *feedback) TargetChanged(value int) {
	f.log.Debugf("target %d (%d%%)", value, media.PercentFromPosition(value))
	f.bus.Publish(engine.TargetUpdate{Value: value, ReceivedAt: time.Now()})
	if rec, ok := f.mSink.(coremetrics.TargetRecorder); ok {
		if err := rec.RecordTargetChange(coremetrics.TargetChangedEvent{Value: value, Time: time.Now()}); err != nil {
			f.log.Warnf("record target: %v", err)
		}
	}
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	sink, err := spotify.New(cfg.Spotify)
	if err != nil {
		return nil, fmt.Errorf("spotify client: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		s, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var mSink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		mSink = coremetrics.NopSink{}
	case 1:
		mSink = sinks[0]
	default:
		mSink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	buf := engine.NewEventBuffer(&feedback{log: logger.New("feedback"), mSink: mSink, bus: bus})
	latch := engine.NewLatch(cfg.Engine.LatchTolerancePercent)

	sched, err := engine.NewScheduler(cfg.Engine, buf, sink, mSink, bus, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	svc := &Service{
		scheduler:   sched,
		sink:        sink,
		buffer:      buf,
		latch:       latch,
		bus:         bus,
		mSink:       mSink,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	onPosition := func(ev engine.PositionEvent) {
		if !svc.latch.Offer(ev.Value) {
			logg.Debugf("latched out value %d, distance %d%%", ev.Value, svc.latch.Distance(ev.Value))
			return
		}
		buf.Record(ev)
	}
	onToggle := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sink.TogglePlayPause(ctx); err != nil {
			logg.Warnf("toggle playback: %v", err)
		}
	}

	switch cfg.Input.Source {
	case config.SourceMQTT:
		src, err := mqttinput.NewSource(cfg.MQTT, onPosition, onToggle)
		if err != nil {
			return nil, fmt.Errorf("mqtt source: %w", err)
		}
		svc.input = src
	default:
		svc.input = midi.NewSource(cfg.MIDI, onPosition, onToggle)
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.primeLatch(ctx)

	go func() {
		if err := s.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			s.log.Errorf("scheduler: %v", err)
		}
	}()
	go func() {
		if err := s.input.Run(ctx); err != nil && ctx.Err() == nil {
			s.log.Errorf("input source: %v", err)
		}
	}()
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.consumeRecords(ctx)

	<-ctx.Done()
	return nil
}

// primeLatch seeds the latch with the current application volume so the knob
// position has to cross it before it starts steering.
func (s *Service) primeLatch(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if pct, ok := s.sink.CurrentVolume(cctx); ok {
		s.latch.Prime(pct)
		s.log.Infof("current volume %d%%, waiting for knob to match", pct)
		return
	}
	s.log.Infof("no active playback, first knob move takes over")
}

// consumeRecords mirrors dispatch outcomes to the service log.
func (s *Service) consumeRecords(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			rec, ok := ev.(engine.DispatchRecord)
			if !ok {
				continue
			}
			if rec.Outcome == engine.RecordAccepted {
				s.log.Infof("volume set to %d%% (%s, %s)", media.PercentFromPosition(rec.Value), rec.Trigger, rec.Latency.Round(time.Millisecond))
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if closer, ok := s.mSink.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}
