package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/orthoctl/orthoctl/core/engine"
	"github.com/orthoctl/orthoctl/core/metrics"
	"github.com/orthoctl/orthoctl/infra/midi"
	"github.com/orthoctl/orthoctl/infra/mqttinput"
	"github.com/orthoctl/orthoctl/infra/spotify"
)

type Config struct {
	Input   InputConfig      `json:"input"`
	MIDI    midi.Config      `json:"midi"`
	MQTT    mqttinput.Config `json:"mqtt"`
	Spotify spotify.Config   `json:"spotify"`
	Engine  engine.Config    `json:"engine"`
	Metrics metrics.Config   `json:"metrics"`
	Logging LoggingConfig    `json:"logging"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("OC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "oc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	cfg.Input.SetDefaults()
	cfg.MIDI.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Spotify.SetDefaults()
	cfg.Engine.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Logging.SetDefaults()

	if err := cfg.Input.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Input.Source {
	case SourceMIDI:
		if err := cfg.MIDI.Validate(); err != nil {
			return nil, err
		}
	case SourceMQTT:
		if err := cfg.MQTT.Validate(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Spotify.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
