package commission_fee

import "math"

// PerShareCommissionFee charges per unit with a floor per fill, the way
// Interactive Brokers fixed pricing works (0.005 per share, 1.00 minimum).
type PerShareCommissionFee struct {
	rate    float64
	minimum float64
}

func NewPerShareCommissionFee(rate float64, minimum float64) CommissionFee {
	return &PerShareCommissionFee{
		rate:    rate,
		minimum: minimum,
	}
}

// NewInteractiveBrokerCommissionFee returns the per share model with IB fixed rates.
func NewInteractiveBrokerCommissionFee() CommissionFee {
	return NewPerShareCommissionFee(0.005, 1.0)
}

func (c *PerShareCommissionFee) Calculate(quantity float64, price float64) float64 {
	fee := c.rate * math.Abs(quantity)
	if fee < c.minimum {
		return c.minimum
	}

	return fee
}
