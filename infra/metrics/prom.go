package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/orthoctl/orthoctl/core/metrics"
)

// PromSink records engine activity in Prometheus metrics.
type PromSink struct {
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	target   prometheus.Gauge
	backoff  prometheus.Gauge
}

// NewPromSink registers the engine metrics on the default Prometheus
// registerer. The HTTP server exposing them is started separately.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "volume_dispatch_attempts_total",
		Help: "Total number of volume dispatch attempts",
	}, []string{"trigger", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "volume_dispatch_latency_seconds",
		Help:    "Time spent in the volume sink call",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger", "outcome"})
	target := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "knob_target_value",
		Help: "Most recent desired knob position (0-127)",
	})
	backoff := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_consecutive_rejections",
		Help: "Rate-limit rejections since the last accepted dispatch",
	})

	if err := reg.Register(attempts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			attempts = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(target); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			target = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(backoff); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			backoff = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{attempts: attempts, latency: latency, target: target, backoff: backoff}, nil
}

// RecordDispatchAttempt increments the attempt counter and observes latency.
func (s *PromSink) RecordDispatchAttempt(ev coremetrics.DispatchAttemptEvent) error {
	s.attempts.WithLabelValues(ev.Trigger, ev.Outcome).Inc()
	if ev.Latency > 0 {
		s.latency.WithLabelValues(ev.Trigger, ev.Outcome).Observe(ev.Latency.Seconds())
	}
	if ev.Outcome == "accepted" {
		s.backoff.Set(0)
	}
	return nil
}

// RecordTargetChange updates the target gauge.
func (s *PromSink) RecordTargetChange(ev coremetrics.TargetChangedEvent) error {
	s.target.Set(float64(ev.Value))
	return nil
}

// RecordBackoff updates the rejection gauge.
func (s *PromSink) RecordBackoff(ev coremetrics.BackoffEvent) error {
	s.backoff.Set(float64(ev.ConsecutiveRejections))
	return nil
}
