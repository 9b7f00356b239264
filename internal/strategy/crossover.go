package strategy

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/meshetar/internal/indicator"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

const (
	FastKey = "fast"
	SlowKey = "slow"
)

// Crossover goes long when the fast average crosses above the slow one and
// short (or flat) on the reverse cross. It keeps no state of its own: the
// previous relation is read from MarketContext.Previous.
type Crossover struct {
	kind       types.IndicatorType
	fast       int
	slow       int
	allowShort bool
}

func NewCrossover(kind types.IndicatorType, fast, slow int, allowShort bool) (*Crossover, error) {
	if kind != types.IndicatorTypeMA && kind != types.IndicatorTypeEMA {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "crossover needs ma or ema, got %q", kind)
	}

	if fast < 1 || fast >= slow {
		return nil, errors.Newf(errors.ErrCodeInvalidWindow, "crossover needs 1 <= fast < slow, got %d and %d", fast, slow)
	}

	return &Crossover{
		kind:       kind,
		fast:       fast,
		slow:       slow,
		allowShort: allowShort,
	}, nil
}

func (c *Crossover) Name() string {
	return fmt.Sprintf("%s_crossover_%d_%d", c.kind, c.fast, c.slow)
}

func (c *Crossover) Indicators() []indicator.Spec {
	return []indicator.Spec{
		{Key: FastKey, Type: c.kind, Params: []any{c.fast}},
		{Key: SlowKey, Type: c.kind, Params: []any{c.slow}},
	}
}

func (c *Crossover) Next(ctx MarketContext) types.Signal {
	fast := ctx.Values.Get(FastKey)
	slow := ctx.Values.Get(SlowKey)

	if fast.IsNone() || slow.IsNone() {
		return newSignal(ctx, types.SignalKindFlat, 0, "indicators warming up")
	}

	f, s := fast.Unwrap(), slow.Unwrap()
	sign := relation(f, s)

	if sign == 0 {
		return newSignal(ctx, types.SignalKindFlat, 0, "fast equals slow")
	}

	strength := 0.0
	if s != 0 {
		strength = (f - s) / math.Abs(s)
	}

	if previousRelation(ctx.Previous) == sign {
		return newSignal(ctx, types.SignalKindHold, strength, "no cross")
	}

	if sign > 0 {
		return newSignal(ctx, types.SignalKindLong, strength, "fast crossed above slow")
	}

	if !c.allowShort {
		return newSignal(ctx, types.SignalKindFlat, strength, "fast crossed below slow")
	}

	return newSignal(ctx, types.SignalKindShort, strength, "fast crossed below slow")
}

func relation(fast, slow float64) int {
	switch {
	case fast > slow:
		return 1
	case fast < slow:
		return -1
	default:
		return 0
	}
}

// previousRelation returns 0 when either previous value is undefined, so the
// first defined bar always counts as a cross.
func previousRelation(prev indicator.Values) int {
	fast := prev.Get(FastKey)
	slow := prev.Get(SlowKey)

	if fast.IsNone() || slow.IsNone() {
		return 0
	}

	return relation(fast.Unwrap(), slow.Unwrap())
}
