package commission_fee

import "github.com/rxtech-lab/meshetar/internal/config"

type CommissionFee interface {
	// Calculate returns the fee charged for filling quantity units at price.
	Calculate(quantity float64, price float64) float64
}

// GetCommissionFeeHandler returns the fee model configured by fee.
// Unknown models charge nothing; config validation rejects them earlier.
func GetCommissionFeeHandler(fee config.Fee) CommissionFee {
	switch fee.Model {
	case config.FeeFlat:
		return NewFlatCommissionFee(fee.Amount)
	case config.FeeProportional:
		return NewProportionalCommissionFee(fee.Rate)
	case config.FeePerShare:
		return NewPerShareCommissionFee(fee.Rate, fee.Minimum)
	case config.FeeZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
