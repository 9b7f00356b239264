package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// EMA is an exponential moving average seeded with the simple average of the
// first period closes. alpha = 2 / (period + 1).
type EMA struct {
	period int
	alpha  float64
	seed   compensatedSum
	seen   int
	value  optional.Option[float64]
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return newEMA(20)
}

func newEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
		seed:   compensatedSum{sum: 0, comp: 0},
		seen:   0,
		value:  optional.None[float64](),
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config expects 1 parameter: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam(params, 0)
	if err != nil {
		return err
	}

	*e = *newEMA(period)

	return nil
}

// Window implements Indicator.
func (e *EMA) Window() int {
	return e.period
}

// Update implements Indicator.
func (e *EMA) Update(bar types.Bar) optional.Option[float64] {
	e.seen++

	if e.seen < e.period {
		e.seed.add(bar.Close)

		return e.value
	}

	if e.seen == e.period {
		e.seed.add(bar.Close)
		e.value = optional.Some(e.seed.value() / float64(e.period))

		return e.value
	}

	prev := e.value.Unwrap()
	e.value = optional.Some(e.alpha*bar.Close + (1-e.alpha)*prev)

	return e.value
}

// Value implements Indicator.
func (e *EMA) Value() optional.Option[float64] {
	return e.value
}

// Reset implements Indicator.
func (e *EMA) Reset() {
	e.seed.reset()
	e.seen = 0
	e.value = optional.None[float64]()
}
