// Package infra contains technical adapters such as the MIDI and MQTT
// inputs, the Spotify client and metrics exporters. These packages should
// depend only on the interfaces defined in the core packages.
package infra
