package execution

import (
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/shopspring/decimal"
)

// Sizer returns the unsigned target position size before lot rounding.
type Sizer interface {
	Size(price float64, equity float64) float64
}

// FixedQuantity always targets the same number of units.
type FixedQuantity struct {
	quantity float64
}

func (s FixedQuantity) Size(price float64, equity float64) float64 {
	return s.quantity
}

// FixedFraction commits a share of current equity.
type FixedFraction struct {
	fraction float64
}

func (s FixedFraction) Size(price float64, equity float64) float64 {
	if price <= 0 || equity <= 0 {
		return 0
	}

	return s.fraction * equity / price
}

// FixedRisk sizes so that a move of stopDistance (a fraction of price)
// against the position loses riskFraction of equity.
type FixedRisk struct {
	riskFraction float64
	stopDistance float64
}

func (s FixedRisk) Size(price float64, equity float64) float64 {
	if price <= 0 || equity <= 0 || s.stopDistance <= 0 {
		return 0
	}

	return s.riskFraction * equity / (price * s.stopDistance)
}

func NewSizer(sizing config.Sizing) Sizer {
	switch sizing.Policy {
	case config.SizingFixedFraction:
		return FixedFraction{fraction: sizing.Fraction}
	case config.SizingFixedRisk:
		return FixedRisk{riskFraction: sizing.RiskFraction, stopDistance: sizing.StopDistance}
	default:
		return FixedQuantity{quantity: sizing.Quantity}
	}
}

// floorToLot rounds quantity down to a whole number of lots.
func floorToLot(quantity float64, lot decimal.Decimal) float64 {
	if quantity <= 0 || !lot.IsPositive() {
		return 0
	}

	lots := decimal.NewFromFloat(quantity).Div(lot).Floor()

	return lots.Mul(lot).InexactFloat64()
}
