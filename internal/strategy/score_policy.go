package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// ScorePolicy combines an indicator signal with a model score.
// Exits (Flat) and Hold always pass unchanged, and so does any signal on a bar
// without a score. Only the entry is gated: a blocked reversal still exits
// the stance it opposes.
type ScorePolicy interface {
	Name() string
	Apply(signal types.Signal, score optional.Option[float64], stance types.SignalKind) types.Signal
}

func NewScorePolicy(mode config.ScoreMode, threshold, weight float64) (ScorePolicy, error) {
	switch mode {
	case config.ScoreModeGate:
		return NewGate(threshold), nil
	case config.ScoreModeBlend:
		if weight < 0 || weight > 1 {
			return nil, errors.Newf(errors.ErrCodeInvalidScorePolicy, "blend weight %v must be in [0, 1]", weight)
		}

		return NewBlend(threshold, weight), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidScorePolicy, "unknown score policy %q", mode)
	}
}

// Gate lets a Long entry through only when score >= threshold and a Short
// entry only when score <= -threshold. A blocked entry becomes Flat when it
// reverses stance and Hold otherwise.
type Gate struct {
	threshold float64
}

func NewGate(threshold float64) *Gate {
	return &Gate{threshold: threshold}
}

func (g *Gate) Name() string {
	return fmt.Sprintf("gate(%g)", g.threshold)
}

func (g *Gate) Apply(signal types.Signal, score optional.Option[float64], stance types.SignalKind) types.Signal {
	if score.IsNone() || !isEntry(signal.Kind) {
		return signal
	}

	s := score.Unwrap()

	switch {
	case signal.Kind == types.SignalKindLong && s >= g.threshold:
		return signal
	case signal.Kind == types.SignalKindShort && s <= -g.threshold:
		return signal
	}

	return blocked(signal, stance, fmt.Sprintf("score %g failed gate %g", s, g.threshold))
}

// Blend mixes indicator strength and score as (1-w)*strength + w*score and
// keeps an entry only when the mix clears the threshold in its direction.
type Blend struct {
	threshold float64
	weight    float64
}

func NewBlend(threshold, weight float64) *Blend {
	return &Blend{
		threshold: threshold,
		weight:    weight,
	}
}

func (b *Blend) Name() string {
	return fmt.Sprintf("blend(%g,%g)", b.threshold, b.weight)
}

func (b *Blend) Apply(signal types.Signal, score optional.Option[float64], stance types.SignalKind) types.Signal {
	if score.IsNone() || !isEntry(signal.Kind) {
		return signal
	}

	combined := (1-b.weight)*signal.Strength + b.weight*score.Unwrap()

	switch {
	case signal.Kind == types.SignalKindLong && combined >= b.threshold:
	case signal.Kind == types.SignalKindShort && combined <= -b.threshold:
	default:
		return blocked(signal, stance, fmt.Sprintf("blended %g failed threshold %g", combined, b.threshold))
	}

	signal.Strength = types.Clamp(combined)

	return signal
}

func isEntry(kind types.SignalKind) bool {
	return kind == types.SignalKindLong || kind == types.SignalKindShort
}

func opposes(kind, stance types.SignalKind) bool {
	return (kind == types.SignalKindLong && stance == types.SignalKindShort) ||
		(kind == types.SignalKindShort && stance == types.SignalKindLong)
}

func blocked(signal types.Signal, stance types.SignalKind, reason string) types.Signal {
	if opposes(signal.Kind, stance) {
		signal.Kind = types.SignalKindFlat
		signal.Reason = signal.Reason + "; " + reason + ", exiting " + string(stance)

		return signal
	}

	signal.Kind = types.SignalKindHold
	signal.Reason = signal.Reason + "; " + reason

	return signal
}
