package strategy

import (
	"github.com/rxtech-lab/meshetar/internal/indicator"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// Hybrid runs an indicator strategy and passes its signal through a ScorePolicy.
type Hybrid struct {
	inner  Strategy
	policy ScorePolicy
}

func NewHybrid(inner Strategy, policy ScorePolicy) *Hybrid {
	return &Hybrid{
		inner:  inner,
		policy: policy,
	}
}

func (h *Hybrid) Name() string {
	return h.inner.Name() + "+" + h.policy.Name()
}

func (h *Hybrid) Indicators() []indicator.Spec {
	return h.inner.Indicators()
}

func (h *Hybrid) Next(ctx MarketContext) types.Signal {
	return h.policy.Apply(h.inner.Next(ctx), ctx.Score, ctx.Stance)
}
