package types

import "time"

// Position is the current holding of one instrument.
type Position struct {
	Symbol string `yaml:"symbol" json:"symbol" csv:"symbol"`
	// Quantity is signed, negative for short.
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity"`
	// AverageEntryPrice includes the entry fees. For longs the fee raises it, for shorts it lowers it.
	AverageEntryPrice float64   `yaml:"average_entry_price" json:"average_entry_price" csv:"average_entry_price"`
	UnrealizedPnL     float64   `yaml:"unrealized_pnl" json:"unrealized_pnl" csv:"unrealized_pnl"`
	OpenedIndex       int       `yaml:"opened_index" json:"opened_index" csv:"opened_index"`
	OpenedAt          time.Time `yaml:"opened_at" json:"opened_at" csv:"opened_at"`
}

// IsFlat reports whether no quantity is held.
func (p Position) IsFlat() bool {
	return p.Quantity == 0
}

// Stance maps the position sign to a signal kind.
func (p Position) Stance() SignalKind {
	switch {
	case p.Quantity > 0:
		return SignalKindLong
	case p.Quantity < 0:
		return SignalKindShort
	default:
		return SignalKindFlat
	}
}

// Type returns LONG or SHORT. Flat positions report LONG.
func (p Position) Type() PositionType {
	if p.Quantity < 0 {
		return PositionTypeShort
	}

	return PositionTypeLong
}

// LedgerSnapshot is the portfolio state marked at one bar's close.
type LedgerSnapshot struct {
	Index             int       `yaml:"index" json:"index" csv:"index"`
	Time              time.Time `yaml:"time" json:"time" csv:"time"`
	Close             float64   `yaml:"close" json:"close" csv:"close"`
	Cash              float64   `yaml:"cash" json:"cash" csv:"cash"`
	Quantity          float64   `yaml:"quantity" json:"quantity" csv:"quantity"`
	AverageEntryPrice float64   `yaml:"average_entry_price" json:"average_entry_price" csv:"average_entry_price"`
	UnrealizedPnL     float64   `yaml:"unrealized_pnl" json:"unrealized_pnl" csv:"unrealized_pnl"`
	RealizedPnL       float64   `yaml:"realized_pnl" json:"realized_pnl" csv:"realized_pnl"`
	Fees              float64   `yaml:"fees" json:"fees" csv:"fees"`
	Equity            float64   `yaml:"equity" json:"equity" csv:"equity"`
}

// ClosedTrade is the round trip produced when a fill reduces a position.
type ClosedTrade struct {
	Side       PositionType `yaml:"side" json:"side" csv:"side"`
	Quantity   float64      `yaml:"quantity" json:"quantity" csv:"quantity"`
	EntryPrice float64      `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice  float64      `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	EntryIndex int          `yaml:"entry_index" json:"entry_index" csv:"entry_index"`
	ExitIndex  int          `yaml:"exit_index" json:"exit_index" csv:"exit_index"`
	EntryTime  time.Time    `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
	ExitTime   time.Time    `yaml:"exit_time" json:"exit_time" csv:"exit_time"`
	// ExitFee is the share of the exit fill's fee charged to this trade.
	ExitFee float64 `yaml:"exit_fee" json:"exit_fee" csv:"exit_fee"`
	// PnL is net of the entry fee (through EntryPrice) and of ExitFee.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// HoldingTime returns how long the position was held.
func (t ClosedTrade) HoldingTime() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
