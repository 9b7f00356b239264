package types

import "github.com/moznion/go-optional"

type TradeHoldingTime struct {
	// Minimum holding time of a closed trade in seconds
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a closed trade in seconds
	Max int `yaml:"max" json:"max"`
	// Average holding time of a closed trade in seconds
	Avg int `yaml:"avg" json:"avg"`
}

type TradePnl struct {
	// Realized PnL. Sum of all closed trades' pnl.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Unrealized PnL of the open position at the last mark.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// Total PnL. RealizedPnL plus UnrealizedPnL.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	// Maximum loss. The lowest closed trade pnl.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit. The highest closed trade pnl.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeResult struct {
	// Count of all closed trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of closed trades with positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of closed trades with negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Winning trades over all closed trades. 0 when nothing closed.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
}

// Summary aggregates a finished run.
type Summary struct {
	Symbol         string  `yaml:"symbol" json:"symbol"`
	Bars           int     `yaml:"bars" json:"bars"`
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	FinalEquity    float64 `yaml:"final_equity" json:"final_equity"`
	// TotalReturn is FinalEquity / InitialCapital - 1.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// MaxDrawdown is the largest peak to trough equity decline as a positive fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Sharpe is None when per-bar returns have zero variance.
	Sharpe optional.Option[float64] `yaml:"-" json:"sharpe"`
	// BuyAndHoldReturn is last close / first close - 1.
	BuyAndHoldReturn float64          `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
	TotalFees        float64          `yaml:"total_fees" json:"total_fees"`
	Orders           int              `yaml:"orders" json:"orders"`
	Fills            int              `yaml:"fills" json:"fills"`
	Rejected         int              `yaml:"rejected" json:"rejected"`
	TradeResult      TradeResult      `yaml:"trade_result" json:"trade_result"`
	TradePnl         TradePnl         `yaml:"trade_pnl" json:"trade_pnl"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`
}
