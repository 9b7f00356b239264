// Package strategy turns indicator values and model scores into one Signal per bar.
package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/indicator"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// MarketContext is everything a strategy may look at on bar Index.
// It never carries data from later bars.
type MarketContext struct {
	Index int
	Bar   types.Bar
	// Values holds the indicator values after updating with Bar.
	Values indicator.Values
	// Previous holds the indicator values of bar Index-1. Empty on the first bar.
	Previous indicator.Values
	// Score is the model score for Index. None when no model is used or it has no opinion.
	Score optional.Option[float64]
	// Stance is the effective stance before this bar's signal.
	Stance types.SignalKind
}

// Strategy produces a Signal from market context. Implementations must be
// deterministic: identical contexts yield identical signals.
type Strategy interface {
	// Name returns the strategy name used in reports.
	Name() string
	// Indicators lists the indicators the engine must maintain for this strategy.
	Indicators() []indicator.Spec
	// Next computes the signal for ctx.Index.
	Next(ctx MarketContext) types.Signal
}

// FromConfig builds the strategy described by cfg. The config is expected to
// be validated already.
func FromConfig(cfg config.StrategyConfig) (Strategy, error) {
	switch cfg.Strategy {
	case config.StrategyCrossover:
		crossover, err := NewCrossover(cfg.MovingAverage, cfg.FastWindow, cfg.SlowWindow, cfg.AllowShort)
		if err != nil {
			return nil, err
		}

		if cfg.ModelScoreThreshold.IsNone() {
			return crossover, nil
		}

		policy, err := NewScorePolicy(cfg.ScorePolicy.Mode, cfg.ModelScoreThreshold.Unwrap(), cfg.ScorePolicy.Weight)
		if err != nil {
			return nil, err
		}

		return NewHybrid(crossover, policy), nil
	case config.StrategyModel:
		if cfg.ModelScoreThreshold.IsNone() {
			return nil, errors.New(errors.ErrCodeStrategyConfigError, "model strategy requires a score threshold")
		}

		return NewModel(cfg.ModelScoreThreshold.Unwrap(), cfg.AllowShort), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy %q", cfg.Strategy)
	}
}

func newSignal(ctx MarketContext, kind types.SignalKind, strength float64, reason string) types.Signal {
	return types.Signal{
		Index:    ctx.Index,
		Time:     ctx.Bar.Time,
		Kind:     kind,
		Strength: types.Clamp(strength),
		Reason:   reason,
	}
}
