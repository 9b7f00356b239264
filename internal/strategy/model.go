package strategy

import (
	"fmt"

	"github.com/rxtech-lab/meshetar/internal/indicator"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// Model trades on the model score alone. A score at or beyond the threshold
// opens a position in its direction; anything weaker, or no score, holds.
type Model struct {
	threshold  float64
	allowShort bool
}

func NewModel(threshold float64, allowShort bool) *Model {
	return &Model{
		threshold:  threshold,
		allowShort: allowShort,
	}
}

func (m *Model) Name() string {
	return fmt.Sprintf("model_%g", m.threshold)
}

func (m *Model) Indicators() []indicator.Spec {
	return nil
}

func (m *Model) Next(ctx MarketContext) types.Signal {
	if ctx.Score.IsNone() {
		return newSignal(ctx, types.SignalKindHold, 0, "no score")
	}

	score := ctx.Score.Unwrap()

	switch {
	case score > 0 && score >= m.threshold:
		return newSignal(ctx, types.SignalKindLong, score, fmt.Sprintf("score %g >= %g", score, m.threshold))
	case score < 0 && score <= -m.threshold:
		if !m.allowShort {
			return newSignal(ctx, types.SignalKindFlat, score, fmt.Sprintf("score %g <= %g", score, -m.threshold))
		}

		return newSignal(ctx, types.SignalKindShort, score, fmt.Sprintf("score %g <= %g", score, -m.threshold))
	default:
		return newSignal(ctx, types.SignalKindHold, score, "score inside threshold")
	}
}
