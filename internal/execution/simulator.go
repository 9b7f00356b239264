// Package execution turns stance transitions into orders and orders into fills.
package execution

import (
	"fmt"
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/execution/commission_fee"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Simulator holds the effective stance of one run. It is not safe for
// concurrent use; every run owns its own simulator.
type Simulator struct {
	lag         config.ExecutionLag
	orderType   types.OrderType
	limitOffset float64
	slippage    float64
	lot         decimal.Decimal
	sizer       Sizer
	fee         commission_fee.CommissionFee
	stance      types.SignalKind
	sequence    int
	logger      *logger.Logger
}

func NewSimulator(cfg config.StrategyConfig, logger *logger.Logger) *Simulator {
	return &Simulator{
		lag:         cfg.ExecutionLag,
		orderType:   cfg.OrderType,
		limitOffset: cfg.LimitOffsetBps / 10000,
		slippage:    cfg.SlippageBps / 10000,
		lot:         decimal.NewFromFloat(cfg.LotSize),
		sizer:       NewSizer(cfg.Sizing),
		fee:         commission_fee.GetCommissionFeeHandler(cfg.Fee),
		stance:      types.SignalKindFlat,
		sequence:    0,
		logger:      logger,
	}
}

// Stance returns the stance reached by the last transition.
func (s *Simulator) Stance() types.SignalKind {
	return s.stance
}

// Lag returns the configured execution lag.
func (s *Simulator) Lag() config.ExecutionLag {
	return s.lag
}

// OnSignal issues an order when the signal changes the effective stance.
// Repeated and Hold signals return None, and so does a transition the
// position already satisfies. A Long or Short whose size rounds to zero under
// the lot size still moves the stance and returns a NoFill error. On a
// reversal the closing leg is still ordered alongside that error.
func (s *Simulator) OnSignal(signal types.Signal, bar types.Bar, position types.Position, equity float64) (optional.Option[types.Order], error) {
	next := signal.Resolve(s.stance)
	if next == s.stance {
		return optional.None[types.Order](), nil
	}

	s.logger.Debug("Stance transition",
		zap.Int("bar", signal.Index),
		zap.String("from", string(s.stance)),
		zap.String("to", string(next)),
	)

	s.stance = next

	var rejected error

	target := s.target(next, bar.Close, equity)
	if target == 0 && next != types.SignalKindFlat {
		rejected = errors.Newf(errors.ErrCodeZeroQuantity,
			"%s target at %.8g rounds to zero with lot size %s", next, bar.Close, s.lot.String())
	}

	delta := target - position.Quantity
	if delta == 0 {
		return optional.None[types.Order](), rejected
	}

	return optional.Some(s.newOrder(delta, bar, signal.Index, types.Reason{
		Reason:  types.OrderReasonStrategy,
		Message: signal.Reason,
	})), rejected
}

// Close issues an order that flattens position, used when a run ends with
// close_at_end. It returns None when already flat.
func (s *Simulator) Close(bar types.Bar, index int, position types.Position) optional.Option[types.Order] {
	s.stance = types.SignalKindFlat

	if position.IsFlat() {
		return optional.None[types.Order]()
	}

	order := s.newOrder(-position.Quantity, bar, index, types.Reason{
		Reason:  types.OrderReasonCloseAtEnd,
		Message: "flatten at end of data",
	})
	order.Type = types.OrderTypeMarket
	order.LimitPrice = optional.None[float64]()

	return optional.Some(order)
}

func (s *Simulator) target(stance types.SignalKind, price, equity float64) float64 {
	size := floorToLot(s.sizer.Size(price, equity), s.lot)

	switch stance {
	case types.SignalKindLong:
		return size
	case types.SignalKindShort:
		return -size
	default:
		return 0
	}
}

func (s *Simulator) newOrder(delta float64, bar types.Bar, index int, reason types.Reason) types.Order {
	s.sequence++

	side := types.SideFor(delta)
	limit := optional.None[float64]()

	if s.orderType == types.OrderTypeLimit {
		if side == types.PurchaseTypeBuy {
			limit = optional.Some(bar.Close * (1 - s.limitOffset))
		} else {
			limit = optional.Some(bar.Close * (1 + s.limitOffset))
		}
	}

	return types.Order{
		ID:          fmt.Sprintf("ord-%06d", s.sequence),
		Symbol:      bar.Symbol,
		Side:        side,
		Type:        s.orderType,
		Quantity:    math.Abs(delta),
		LimitPrice:  limit,
		IssuedIndex: index,
		IssuedAt:    bar.Time,
		Status:      types.OrderStatusPending,
		Reason:      reason,
	}
}

// Fill executes order against bar. With same_bar the bar is the signal bar
// and only its close is used; with next_bar_open it is the following bar.
// Rejections are NoFill errors in the ExecutionPolicyViolation category.
func (s *Simulator) Fill(order types.Order, bar types.Bar, index int, position types.Position, cash float64) (types.Fill, error) {
	return s.fill(order, bar, index, position, cash, s.lag == config.ExecutionLagSameBar)
}

// FillAtClose executes order at bar's close whatever the configured lag.
// It settles the close_at_end order on the last bar.
func (s *Simulator) FillAtClose(order types.Order, bar types.Bar, index int, position types.Position, cash float64) (types.Fill, error) {
	return s.fill(order, bar, index, position, cash, true)
}

func (s *Simulator) fill(order types.Order, bar types.Bar, index int, position types.Position, cash float64, atClose bool) (types.Fill, error) {
	if err := order.Validate(); err != nil {
		return types.Fill{}, err
	}

	price, err := s.fillPrice(order, bar, atClose)
	if err != nil {
		return types.Fill{}, err
	}

	fee := s.fee.Calculate(order.Quantity, price)
	fill := types.Fill{
		OrderID:  order.ID,
		Symbol:   order.Symbol,
		Side:     order.Side,
		Quantity: order.Quantity,
		Price:    price,
		Fee:      fee,
		Index:    index,
		Time:     bar.Time,
	}

	after := position.Quantity + fill.SignedQuantity()
	if order.Side == types.PurchaseTypeBuy && after > 0 {
		cost := order.Quantity*price + fee
		if cost > cash {
			return types.Fill{}, errors.Newf(errors.ErrCodeInsufficientCash,
				"buy of %.8g at %.8g costs %.8g but cash is %.8g", order.Quantity, price, cost, cash)
		}
	}

	return fill, nil
}

func (s *Simulator) fillPrice(order types.Order, bar types.Bar, atClose bool) (float64, error) {
	if order.Type == types.OrderTypeLimit {
		return s.limitPrice(order, bar, atClose)
	}

	reference := bar.Open
	if atClose {
		reference = bar.Close
	}

	if order.Side == types.PurchaseTypeBuy {
		return reference * (1 + s.slippage), nil
	}

	return reference * (1 - s.slippage), nil
}

// limitPrice fills at the better of the open and the limit when the bar
// trades through the limit. Same bar execution only sees the close.
func (s *Simulator) limitPrice(order types.Order, bar types.Bar, atClose bool) (float64, error) {
	limit := order.LimitPrice.Unwrap()

	if atClose {
		touched := (order.Side == types.PurchaseTypeBuy && bar.Close <= limit) ||
			(order.Side == types.PurchaseTypeSell && bar.Close >= limit)
		if !touched {
			return 0, errors.Newf(errors.ErrCodeLimitNotTouched, "close %.8g did not reach limit %.8g", bar.Close, limit)
		}

		return bar.Close, nil
	}

	if order.Side == types.PurchaseTypeBuy {
		if bar.Low > limit {
			return 0, errors.Newf(errors.ErrCodeLimitNotTouched, "low %.8g stayed above buy limit %.8g", bar.Low, limit)
		}

		return math.Min(bar.Open, limit), nil
	}

	if bar.High < limit {
		return 0, errors.Newf(errors.ErrCodeLimitNotTouched, "high %.8g stayed below sell limit %.8g", bar.High, limit)
	}

	return math.Max(bar.Open, limit), nil
}
