package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

type PurchaseType string

type OrderType string

type OrderStatus string

type PositionType string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

const (
	PositionTypeLong  PositionType = "LONG"
	PositionTypeShort PositionType = "SHORT"
)

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

const (
	OrderReasonStrategy         string = "strategy"
	OrderReasonCloseAtEnd       string = "close_at_end"
	OrderReasonInsufficientCash string = "insufficient_cash"
	OrderReasonZeroQuantity     string = "zero_quantity"
	OrderReasonLimitNotTouched  string = "limit_not_touched"
	OrderReasonEndOfData        string = "end_of_data"
)

type Reason struct {
	Reason  string `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	Message string `yaml:"message" json:"message" csv:"message"`
}

// Order is a request to change the position, issued on a stance transition.
type Order struct {
	ID       string       `yaml:"id" json:"id" csv:"id" validate:"required"`
	Symbol   string       `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side     PurchaseType `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Type     OrderType    `yaml:"type" json:"type" csv:"type" validate:"required,oneof=MARKET LIMIT"`
	Quantity float64      `yaml:"quantity" json:"quantity" csv:"quantity" validate:"gt=0"`
	// LimitPrice is set for LIMIT orders only.
	LimitPrice optional.Option[float64] `yaml:"limit_price" json:"limit_price" csv:"limit_price"`
	// IssuedIndex is the bar whose signal produced the order.
	IssuedIndex int         `yaml:"issued_index" json:"issued_index" csv:"issued_index" validate:"gte=0"`
	IssuedAt    time.Time   `yaml:"issued_at" json:"issued_at" csv:"issued_at"`
	Status      OrderStatus `yaml:"status" json:"status" csv:"status" validate:"required,oneof=PENDING FILLED CANCELLED REJECTED"`
	Reason      Reason      `yaml:"reason" json:"reason" csv:"reason"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	if o.Type == OrderTypeLimit && o.LimitPrice.IsNone() {
		return errors.New(errors.ErrCodeInvalidOrder, "limit order requires a limit price")
	}

	return nil
}

// SignedQuantity returns the quantity with the side applied: positive for buys.
func (o Order) SignedQuantity() float64 {
	if o.Side == PurchaseTypeSell {
		return -o.Quantity
	}

	return o.Quantity
}

// Fill is an executed order. Price already includes slippage.
type Fill struct {
	OrderID  string       `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol   string       `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side     PurchaseType `yaml:"side" json:"side" csv:"side"`
	Quantity float64      `yaml:"quantity" json:"quantity" csv:"quantity"`
	Price    float64      `yaml:"price" json:"price" csv:"price"`
	Fee      float64      `yaml:"fee" json:"fee" csv:"fee"`
	Index    int          `yaml:"index" json:"index" csv:"index"`
	Time     time.Time    `yaml:"time" json:"time" csv:"time"`
}

// SignedQuantity returns the quantity with the side applied: positive for buys.
func (f Fill) SignedQuantity() float64 {
	if f.Side == PurchaseTypeSell {
		return -f.Quantity
	}

	return f.Quantity
}

// Notional returns price times quantity.
func (f Fill) Notional() float64 {
	return f.Price * f.Quantity
}

// SideFor returns the order side needed to move the position by delta.
func SideFor(delta float64) PurchaseType {
	if delta < 0 {
		return PurchaseTypeSell
	}

	return PurchaseTypeBuy
}
