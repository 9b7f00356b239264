package engine

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/ledger"
	"github.com/rxtech-lab/meshetar/internal/types"
)

func computeSummary(cfg config.StrategyConfig, series types.Series, l *ledger.Ledger, orders []types.Order) types.Summary {
	snapshots := l.Snapshots()

	finalEquity := l.InitialCapital()
	unrealized := 0.0

	if n := len(snapshots); n > 0 {
		finalEquity = snapshots[n-1].Equity
		unrealized = snapshots[n-1].UnrealizedPnL
	}

	rejected := 0

	for _, order := range orders {
		if order.Status == types.OrderStatusRejected {
			rejected++
		}
	}

	realized := l.RealizedPnL()

	return types.Summary{
		Symbol:           series.Symbol,
		Bars:             len(snapshots),
		InitialCapital:   l.InitialCapital(),
		FinalEquity:      finalEquity,
		TotalReturn:      finalEquity/l.InitialCapital() - 1,
		MaxDrawdown:      maxDrawdown(snapshots),
		Sharpe:           sharpe(snapshots, cfg.Statistics),
		BuyAndHoldReturn: buyAndHold(series, len(snapshots)),
		TotalFees:        l.Fees(),
		Orders:           len(orders),
		Fills:            len(l.Fills()),
		Rejected:         rejected,
		TradeResult:      tradeResult(l.Trades()),
		TradePnl:         tradePnl(l.Trades(), realized, unrealized),
		TradeHoldingTime: holdingTime(l.Trades()),
	}
}

// maxDrawdown returns the largest peak to trough equity decline as a fraction of the peak.
func maxDrawdown(snapshots []types.LedgerSnapshot) float64 {
	peak := 0.0
	worst := 0.0

	for _, s := range snapshots {
		if s.Equity > peak {
			peak = s.Equity
		}

		if peak <= 0 {
			continue
		}

		if dd := (peak - s.Equity) / peak; dd > worst {
			worst = dd
		}
	}

	return worst
}

// sharpe annualizes mean over sample standard deviation of per-bar excess
// returns. It is None with fewer than three snapshots, which give fewer than
// two returns, or with zero deviation.
func sharpe(snapshots []types.LedgerSnapshot, stats config.Statistics) optional.Option[float64] {
	if len(snapshots) < 3 {
		return optional.None[float64]()
	}

	perBar := stats.RiskFreeRate / stats.PeriodsPerYear
	excess := make([]float64, 0, len(snapshots)-1)

	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].Equity
		if prev == 0 {
			return optional.None[float64]()
		}

		excess = append(excess, snapshots[i].Equity/prev-1-perBar)
	}

	mean := 0.0
	for _, r := range excess {
		mean += r
	}

	mean /= float64(len(excess))

	variance := 0.0
	for _, r := range excess {
		variance += (r - mean) * (r - mean)
	}

	std := math.Sqrt(variance / float64(len(excess)-1))
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return optional.None[float64]()
	}

	return optional.Some(mean / std * math.Sqrt(stats.PeriodsPerYear))
}

// buyAndHold compares the last processed close against the first.
func buyAndHold(series types.Series, processed int) float64 {
	if processed == 0 {
		return 0
	}

	first := series.Bars[0].Close
	last := series.Bars[processed-1].Close

	return last/first - 1
}

func tradeResult(trades []types.ClosedTrade) types.TradeResult {
	result := types.TradeResult{
		NumberOfTrades:        len(trades),
		NumberOfWinningTrades: 0,
		NumberOfLosingTrades:  0,
		WinRate:               0,
	}

	for _, trade := range trades {
		switch {
		case trade.PnL > 0:
			result.NumberOfWinningTrades++
		case trade.PnL < 0:
			result.NumberOfLosingTrades++
		}
	}

	if len(trades) > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(len(trades))
	}

	return result
}

func tradePnl(trades []types.ClosedTrade, realized, unrealized float64) types.TradePnl {
	pnl := types.TradePnl{
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		TotalPnL:      realized + unrealized,
		MaximumLoss:   0,
		MaximumProfit: 0,
	}

	for i, trade := range trades {
		if i == 0 || trade.PnL < pnl.MaximumLoss {
			pnl.MaximumLoss = trade.PnL
		}

		if i == 0 || trade.PnL > pnl.MaximumProfit {
			pnl.MaximumProfit = trade.PnL
		}
	}

	return pnl
}

func holdingTime(trades []types.ClosedTrade) types.TradeHoldingTime {
	if len(trades) == 0 {
		return types.TradeHoldingTime{Min: 0, Max: 0, Avg: 0}
	}

	total := 0
	result := types.TradeHoldingTime{Min: math.MaxInt, Max: 0, Avg: 0}

	for _, trade := range trades {
		seconds := int(trade.HoldingTime().Seconds())
		total += seconds

		result.Min = min(result.Min, seconds)
		result.Max = max(result.Max, seconds)
	}

	result.Avg = total / len(trades)

	return result
}
