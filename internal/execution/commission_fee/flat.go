package commission_fee

// FlatCommissionFee charges the same amount on every fill.
type FlatCommissionFee struct {
	amount float64
}

func NewFlatCommissionFee(amount float64) CommissionFee {
	return &FlatCommissionFee{amount: amount}
}

func (c *FlatCommissionFee) Calculate(quantity float64, price float64) float64 {
	return c.amount
}
