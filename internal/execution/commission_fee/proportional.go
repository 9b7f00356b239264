package commission_fee

import "math"

// ProportionalCommissionFee charges a rate of the fill notional.
type ProportionalCommissionFee struct {
	rate float64
}

func NewProportionalCommissionFee(rate float64) CommissionFee {
	return &ProportionalCommissionFee{rate: rate}
}

func (c *ProportionalCommissionFee) Calculate(quantity float64, price float64) float64 {
	return c.rate * math.Abs(quantity) * price
}
