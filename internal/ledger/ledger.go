// Package ledger keeps cash, position and profit and loss for one run.
package ledger

import (
	"time"

	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/shopspring/decimal"
)

// Ledger applies fills with weighted average cost accounting and records one
// snapshot per bar. Entry fees are folded into the average entry price; exit
// fees are charged to realized PnL.
type Ledger struct {
	symbol      string
	initial     decimal.Decimal
	cash        decimal.Decimal
	quantity    decimal.Decimal
	average     decimal.Decimal
	realized    decimal.Decimal
	fees        decimal.Decimal
	lastClose   decimal.Decimal
	openedIndex int
	openedAt    time.Time
	fills       []types.Fill
	trades      []types.ClosedTrade
	snapshots   []types.LedgerSnapshot
}

func NewLedger(symbol string, initialCapital float64) *Ledger {
	initial := decimal.NewFromFloat(initialCapital)

	return &Ledger{
		symbol:      symbol,
		initial:     initial,
		cash:        initial,
		quantity:    decimal.Zero,
		average:     decimal.Zero,
		realized:    decimal.Zero,
		fees:        decimal.Zero,
		lastClose:   decimal.Zero,
		openedIndex: -1,
		openedAt:    time.Time{},
		fills:       []types.Fill{},
		trades:      []types.ClosedTrade{},
		snapshots:   []types.LedgerSnapshot{},
	}
}

// Apply books a fill and returns the resulting position. A fill that crosses
// zero is booked as a close of the old position followed by an open of the new
// one, with the fee split by quantity.
func (l *Ledger) Apply(fill types.Fill) types.Position {
	l.fills = append(l.fills, fill)

	qty := decimal.NewFromFloat(fill.Quantity)
	price := decimal.NewFromFloat(fill.Price)
	fee := decimal.NewFromFloat(fill.Fee)
	signed := qty
	if fill.Side == types.PurchaseTypeSell {
		signed = qty.Neg()
	}

	l.cash = l.cash.Sub(signed.Mul(price)).Sub(fee)
	l.fees = l.fees.Add(fee)

	opening := qty
	if !l.quantity.IsZero() && l.quantity.Sign() != signed.Sign() {
		closing := decimal.Min(qty, l.quantity.Abs())
		l.close(fill, closing, price, fee.Mul(closing).Div(qty))
		opening = qty.Sub(closing)
	}

	if opening.IsPositive() {
		l.open(fill, opening, signed.Sign(), price, fee.Mul(opening).Div(qty))
	}

	return l.Position()
}

// close realizes pnl on part of the current position.
func (l *Ledger) close(fill types.Fill, qty, price, fee decimal.Decimal) {
	long := l.quantity.IsPositive()

	pnl := price.Sub(l.average).Mul(qty)
	if !long {
		pnl = pnl.Neg()
	}

	pnl = pnl.Sub(fee)
	l.realized = l.realized.Add(pnl)

	side := types.PositionTypeLong
	if !long {
		side = types.PositionTypeShort
	}

	l.trades = append(l.trades, types.ClosedTrade{
		Side:       side,
		Quantity:   qty.InexactFloat64(),
		EntryPrice: l.average.InexactFloat64(),
		ExitPrice:  price.InexactFloat64(),
		EntryIndex: l.openedIndex,
		ExitIndex:  fill.Index,
		EntryTime:  l.openedAt,
		ExitTime:   fill.Time,
		ExitFee:    fee.InexactFloat64(),
		PnL:        pnl.InexactFloat64(),
	})

	if long {
		l.quantity = l.quantity.Sub(qty)
	} else {
		l.quantity = l.quantity.Add(qty)
	}

	if l.quantity.IsZero() {
		l.average = decimal.Zero
		l.openedIndex = -1
		l.openedAt = time.Time{}
	}
}

// open grows the position in direction sign, folding the fee into the average.
func (l *Ledger) open(fill types.Fill, qty decimal.Decimal, sign int, price, fee decimal.Decimal) {
	cost := qty.Mul(price)
	if sign > 0 {
		cost = cost.Add(fee)
	} else {
		cost = cost.Sub(fee)
	}

	held := l.quantity.Abs()
	if held.IsZero() {
		l.openedIndex = fill.Index
		l.openedAt = fill.Time
	}

	l.average = held.Mul(l.average).Add(cost).Div(held.Add(qty))

	if sign > 0 {
		l.quantity = l.quantity.Add(qty)
	} else {
		l.quantity = l.quantity.Sub(qty)
	}
}

// Mark values the position at bar's close and appends a snapshot.
func (l *Ledger) Mark(index int, bar types.Bar) types.LedgerSnapshot {
	l.lastClose = decimal.NewFromFloat(bar.Close)

	equity := l.equity()
	snapshot := types.LedgerSnapshot{
		Index:             index,
		Time:              bar.Time,
		Close:             bar.Close,
		Cash:              l.cash.InexactFloat64(),
		Quantity:          l.quantity.InexactFloat64(),
		AverageEntryPrice: l.average.InexactFloat64(),
		UnrealizedPnL:     l.unrealized().InexactFloat64(),
		RealizedPnL:       l.realized.InexactFloat64(),
		Fees:              l.fees.InexactFloat64(),
		Equity:            equity.InexactFloat64(),
	}

	l.snapshots = append(l.snapshots, snapshot)

	return snapshot
}

func (l *Ledger) unrealized() decimal.Decimal {
	if l.quantity.IsZero() {
		return decimal.Zero
	}

	return l.lastClose.Sub(l.average).Mul(l.quantity)
}

func (l *Ledger) equity() decimal.Decimal {
	return l.cash.Add(l.quantity.Mul(l.lastClose))
}

// Position returns the current position valued at the last mark.
func (l *Ledger) Position() types.Position {
	return types.Position{
		Symbol:            l.symbol,
		Quantity:          l.quantity.InexactFloat64(),
		AverageEntryPrice: l.average.InexactFloat64(),
		UnrealizedPnL:     l.unrealized().InexactFloat64(),
		OpenedIndex:       l.openedIndex,
		OpenedAt:          l.openedAt,
	}
}

func (l *Ledger) Cash() float64 {
	return l.cash.InexactFloat64()
}

// Equity returns cash plus position value at the last marked close.
func (l *Ledger) Equity() float64 {
	return l.equity().InexactFloat64()
}

// EquityAt values the position at price without recording a snapshot.
func (l *Ledger) EquityAt(price float64) float64 {
	return l.cash.Add(l.quantity.Mul(decimal.NewFromFloat(price))).InexactFloat64()
}

func (l *Ledger) RealizedPnL() float64 {
	return l.realized.InexactFloat64()
}

func (l *Ledger) Fees() float64 {
	return l.fees.InexactFloat64()
}

func (l *Ledger) InitialCapital() float64 {
	return l.initial.InexactFloat64()
}

func (l *Ledger) Fills() []types.Fill {
	return l.fills
}

func (l *Ledger) Trades() []types.ClosedTrade {
	return l.trades
}

func (l *Ledger) Snapshots() []types.LedgerSnapshot {
	return l.snapshots
}
