package strategy_test

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/indicator"
	"github.com/rxtech-lab/meshetar/internal/strategy"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHybrid(t *testing.T) {
	t.Run("gates the inner signal with the context score", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockStrategy(ctrl)

		ctx := strategy.MarketContext{Index: 7, Score: optional.Some(0.1)}
		inner.EXPECT().Next(ctx).Return(types.Signal{Index: 7, Kind: types.SignalKindLong, Reason: "cross"})

		hybrid := strategy.NewHybrid(inner, strategy.NewGate(0.5))
		signal := hybrid.Next(ctx)

		assert.Equal(t, types.SignalKindHold, signal.Kind)
		assert.Equal(t, 7, signal.Index)
	})

	t.Run("a blocked reversal exits the current stance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockStrategy(ctrl)

		ctx := strategy.MarketContext{Index: 9, Score: optional.Some(0.0), Stance: types.SignalKindLong}
		inner.EXPECT().Next(ctx).Return(types.Signal{Index: 9, Kind: types.SignalKindShort, Reason: "cross"})

		signal := strategy.NewHybrid(inner, strategy.NewGate(0.5)).Next(ctx)

		assert.Equal(t, types.SignalKindFlat, signal.Kind)
	})

	t.Run("delegates name and indicators", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockStrategy(ctrl)

		specs := []indicator.Spec{{Key: "fast", Type: types.IndicatorTypeMA, Params: []any{2}}}
		inner.EXPECT().Name().Return("inner")
		inner.EXPECT().Indicators().Return(specs)

		hybrid := strategy.NewHybrid(inner, strategy.NewBlend(0.2, 0.5))

		assert.Equal(t, "inner+blend(0.2,0.5)", hybrid.Name())
		assert.Equal(t, specs, hybrid.Indicators())
	})

	t.Run("passes exits through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockStrategy(ctrl)

		exit := types.Signal{Kind: types.SignalKindFlat, Reason: "cross"}
		inner.EXPECT().Next(gomock.Any()).Return(exit)

		hybrid := strategy.NewHybrid(inner, strategy.NewGate(0.9))

		assert.Equal(t, exit, hybrid.Next(strategy.MarketContext{Score: optional.Some(-1.0)}))
	})
}
