package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation over closes.
type MA struct {
	period  int
	window  *ring
	sum     compensatedSum
	updates int
	value   optional.Option[float64]
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return newMA(20)
}

func newMA(period int) *MA {
	return &MA{
		period:  period,
		window:  newRing(period),
		sum:     compensatedSum{sum: 0, comp: 0},
		updates: 0,
		value:   optional.None[float64](),
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects 1 parameter: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam(params, 0)
	if err != nil {
		return err
	}

	*m = *newMA(period)

	return nil
}

// Window implements Indicator.
func (m *MA) Window() int {
	return m.period
}

// Update implements Indicator.
func (m *MA) Update(bar types.Bar) optional.Option[float64] {
	evicted, full := m.window.push(bar.Close)

	m.updates++
	if m.updates%resyncEvery == 0 {
		m.sum = windowSum(m.window)
	} else {
		m.sum.add(bar.Close)
		if full {
			m.sum.add(-evicted)
		}
	}

	if !m.window.full() {
		m.value = optional.None[float64]()

		return m.value
	}

	m.value = optional.Some(m.sum.value() / float64(m.period))

	return m.value
}

// Value implements Indicator.
func (m *MA) Value() optional.Option[float64] {
	return m.value
}

// Reset implements Indicator.
func (m *MA) Reset() {
	m.window.reset()
	m.sum.reset()
	m.updates = 0
	m.value = optional.None[float64]()
}
