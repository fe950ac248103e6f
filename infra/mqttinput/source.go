// Package mqttinput receives knob positions over MQTT, for remotes bridged
// onto the network instead of plugged in locally. Messages are JSON objects
// {"value": N} with N in [0,127]; out-of-range values are clamped.
package mqttinput

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/orthoctl/orthoctl/core/engine"
	"github.com/orthoctl/orthoctl/core/media"
	"github.com/orthoctl/orthoctl/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

type knobMessage struct {
	Value int `json:"value"`
}

// Source subscribes to the knob topic and forwards positions to the engine.
type Source struct {
	cli        pahoClient
	cfg        Config
	log        logger.Logger
	onPosition func(engine.PositionEvent)
	onToggle   func()
}

// NewSource connects to the broker and subscribes to the knob topic.
// onToggle may be nil; it fires for messages of the form {"toggle":true}.
func NewSource(cfg Config, onPosition func(engine.PositionEvent), onToggle func()) (*Source, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Source{
		cfg:        cfg,
		log:        logger.New("mqtt-input"),
		onPosition: onPosition,
		onToggle:   onToggle,
	}

	opts, err := newClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnect = func(c paho.Client) {
		s.subscribe(c)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		s.log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		s.log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s.cli = cli
	return s, nil
}

func newClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// subscribe runs on every (re)connect; the broker forgets non-persistent
// subscriptions across sessions.
func (s *Source) subscribe(c pahoClient) {
	s.log.Infof("MQTT connected, subscribing to %s", s.cfg.Topic)
	if token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage); token.Wait() && token.Error() != nil {
		s.log.Errorf("subscribe error: %v", token.Error())
	}
}

// onMessage decodes one knob payload. Malformed payloads are logged and
// dropped; the next position supersedes them anyway.
func (s *Source) onMessage(_ paho.Client, msg paho.Message) {
	var m struct {
		knobMessage
		Toggle bool `json:"toggle"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		s.log.Warnf("bad knob payload on %s: %v", msg.Topic(), err)
		return
	}
	if m.Toggle {
		if s.onToggle != nil {
			s.onToggle()
		}
		return
	}
	if s.onPosition != nil {
		s.onPosition(engine.PositionEvent{
			Value:      media.ClampPosition(m.Value),
			ReceivedAt: time.Now(),
		})
	}
}

// Run blocks until the context is cancelled, then disconnects.
func (s *Source) Run(ctx context.Context) error {
	<-ctx.Done()
	s.cli.Disconnect(250)
	return nil
}
