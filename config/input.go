package config

import "fmt"

// Input source kinds.
const (
	SourceMIDI = "midi"
	SourceMQTT = "mqtt"
)

// InputConfig selects where knob positions come from.
type InputConfig struct {
	// Source is "midi" for a local controller or "mqtt" for a networked one.
	Source string `json:"source"`
}

// SetDefaults applies sane defaults.
func (c *InputConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = SourceMIDI
	}
}

// Validate checks the source kind.
func (c InputConfig) Validate() error {
	if c.Source != SourceMIDI && c.Source != SourceMQTT {
		return fmt.Errorf("unknown input source %s", c.Source)
	}
	return nil
}
