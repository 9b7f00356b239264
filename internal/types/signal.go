package types

import "time"

type SignalKind string

const (
	// SignalKindLong asks for a long position
	SignalKindLong SignalKind = "long"
	// SignalKindShort asks for a short position
	SignalKindShort SignalKind = "short"
	// SignalKindFlat asks for no position
	SignalKindFlat SignalKind = "flat"
	// SignalKindHold keeps whatever stance is currently held
	SignalKindHold SignalKind = "hold"
)

// Signal is the decision produced for one bar.
type Signal struct {
	// Index is the bar index the signal was computed on
	Index int `yaml:"index" json:"index"`
	// Time is the timestamp of that bar
	Time time.Time `yaml:"time" json:"time"`
	Kind SignalKind `yaml:"kind" json:"kind"`
	// Strength is in [-1, 1]. 0 when the signal carries no conviction.
	Strength float64 `yaml:"strength" json:"strength"`
	Reason   string  `yaml:"reason" json:"reason"`
}

// Resolve returns the stance this signal asks for given the current stance.
// Hold keeps the current stance.
func (s Signal) Resolve(current SignalKind) SignalKind {
	if s.Kind == SignalKindHold {
		return current
	}

	return s.Kind
}

// Clamp limits v to [-1, 1].
func Clamp(v float64) float64 {
	if v > 1 {
		return 1
	}

	if v < -1 {
		return -1
	}

	return v
}
