package engine

import (
	"fmt"
	"time"
)

// Config defines the engine timing parameters loaded from configuration.
type Config struct {
	// TickIntervalMs is the heartbeat period of the dispatch scheduler.
	TickIntervalMs int `json:"tick_interval_ms"`
	// SettleQuietMs is the quiet period after which the knob is considered settled.
	SettleQuietMs int `json:"settle_quiet_ms"`
	// MaxCallsPerSecond caps dispatch attempts in any rolling one-second window.
	MaxCallsPerSecond int `json:"max_calls_per_second"`
	// BackoffCooldownMs is the pause after an upstream rate-limit rejection.
	BackoffCooldownMs int `json:"backoff_cooldown_ms"`
	// LatchTolerancePercent is the maximum distance between knob and
	// application volume at which the knob engages.
	LatchTolerancePercent int `json:"latch_tolerance_percent"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TickIntervalMs == 0 {
		c.TickIntervalMs = 250
	}
	if c.SettleQuietMs == 0 {
		c.SettleQuietMs = 400
	}
	if c.MaxCallsPerSecond == 0 {
		c.MaxCallsPerSecond = 4
	}
	if c.BackoffCooldownMs == 0 {
		c.BackoffCooldownMs = 10000
	}
	if c.LatchTolerancePercent == 0 {
		c.LatchTolerancePercent = 3
	}
}

// Validate checks the configured values.
func (c Config) Validate() error {
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive")
	}
	if c.SettleQuietMs <= 0 {
		return fmt.Errorf("settle_quiet_ms must be positive")
	}
	if c.MaxCallsPerSecond < 1 {
		return fmt.Errorf("max_calls_per_second must be at least 1")
	}
	if c.BackoffCooldownMs <= 0 {
		return fmt.Errorf("backoff_cooldown_ms must be positive")
	}
	if c.LatchTolerancePercent < 0 || c.LatchTolerancePercent > 100 {
		return fmt.Errorf("latch_tolerance_percent must be within [0,100]")
	}
	return nil
}

// TickInterval returns the heartbeat period as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// SettleQuiet returns the quiet period as a duration.
func (c Config) SettleQuiet() time.Duration {
	return time.Duration(c.SettleQuietMs) * time.Millisecond
}

// BackoffCooldown returns the cooldown as a duration.
func (c Config) BackoffCooldown() time.Duration {
	return time.Duration(c.BackoffCooldownMs) * time.Millisecond
}
