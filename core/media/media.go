// Package media defines the contracts between the dispatch engine and the
// controlled playback application. Implementations live under infra.
package media

import "context"

// Outcome classifies the result of a volume dispatch. It is a closed set:
// only Rejected feeds the backoff logic, everything else that went wrong is
// OtherFailure and is simply retried on the next cycle.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
	OtherFailure
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "failure"
	}
}

// VolumeSink applies an absolute volume on the controlled application.
// value is the raw knob position in [0,127]; implementations map it to their
// native scale. Rejected means the upstream refused the call because of rate
// limiting (HTTP 429 or equivalent). The returned error carries diagnostic
// detail only; callers branch on the Outcome.
type VolumeSink interface {
	SetVolume(ctx context.Context, value int) (Outcome, error)
}

// VolumeReader reports the application's current volume in percent.
// ok is false when the volume cannot be determined.
type VolumeReader interface {
	CurrentVolume(ctx context.Context) (percent int, ok bool)
}

// PlaybackController toggles play/pause on the controlled application.
type PlaybackController interface {
	TogglePlayPause(ctx context.Context) error
}

// MaxPosition is the highest raw knob position (MIDI CC value range).
const MaxPosition = 127

// ClampPosition bounds a raw position to [0,MaxPosition].
func ClampPosition(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxPosition {
		return MaxPosition
	}
	return v
}

// PercentFromPosition converts a raw knob position to a volume percentage.
func PercentFromPosition(v int) int {
	return ClampPosition(v) * 100 / MaxPosition
}
