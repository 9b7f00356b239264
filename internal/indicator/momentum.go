package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Momentum compares the close with the close period bars earlier. As a rate of
// change it reports (close - past) / past, otherwise close - past.
type Momentum struct {
	name   types.IndicatorType
	period int
	closes *ring
	value  optional.Option[float64]
}

// NewMomentum creates a new momentum indicator with default configuration.
func NewMomentum() Indicator {
	return newMomentum(types.IndicatorTypeMomentum, 10)
}

// NewROC creates a new rate of change indicator with default configuration.
func NewROC() Indicator {
	return newMomentum(types.IndicatorTypeROC, 10)
}

func newMomentum(name types.IndicatorType, period int) *Momentum {
	return &Momentum{
		name:   name,
		period: period,
		closes: newRing(period + 1),
		value:  optional.None[float64](),
	}
}

// Name returns the name of the indicator.
func (m *Momentum) Name() types.IndicatorType {
	return m.name
}

// Config expects 1 parameter: period (int).
func (m *Momentum) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam(params, 0)
	if err != nil {
		return err
	}

	*m = *newMomentum(m.name, period)

	return nil
}

// Window implements Indicator.
func (m *Momentum) Window() int {
	return m.period + 1
}

// Update implements Indicator.
func (m *Momentum) Update(bar types.Bar) optional.Option[float64] {
	m.closes.push(bar.Close)

	if !m.closes.full() {
		return m.value
	}

	past := m.closes.oldest()
	if m.name == types.IndicatorTypeROC {
		m.value = optional.Some((bar.Close - past) / past)
	} else {
		m.value = optional.Some(bar.Close - past)
	}

	return m.value
}

// Value implements Indicator.
func (m *Momentum) Value() optional.Option[float64] {
	return m.value
}

// Reset implements Indicator.
func (m *Momentum) Reset() {
	m.closes.reset()
	m.value = optional.None[float64]()
}
