package midi

import (
	"fmt"
	"time"
)

// Config defines the MIDI input source settings.
type Config struct {
	// PortName selects the MIDI port; matched case-insensitively as a
	// substring, the way Bluetooth devices tend to vary their names.
	PortName string `json:"port_name"`
	// SysexEnabled sends the vendor handshake on connect.
	SysexEnabled bool `json:"sysex"`
	// PollIntervalMs is how often the port list is rescanned while waiting
	// for the device or watching for its disappearance.
	PollIntervalMs int `json:"poll_interval_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 1000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.PortName == "" {
		return fmt.Errorf("port_name is required")
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("poll_interval_ms must not be negative")
	}
	return nil
}

// PollInterval returns the rescan period as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
