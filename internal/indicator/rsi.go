package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// RSI represents the Relative Strength Index indicator with Wilder smoothing.
// It needs period price changes, so the first value appears on bar period+1.
type RSI struct {
	period    int
	prevClose optional.Option[float64]
	changes   int
	gainSum   compensatedSum
	lossSum   compensatedSum
	avgGain   float64
	avgLoss   float64
	value     optional.Option[float64]
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return newRSI(14)
}

func newRSI(period int) *RSI {
	return &RSI{
		period:    period,
		prevClose: optional.None[float64](),
		changes:   0,
		gainSum:   compensatedSum{sum: 0, comp: 0},
		lossSum:   compensatedSum{sum: 0, comp: 0},
		avgGain:   0,
		avgLoss:   0,
		value:     optional.None[float64](),
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam(params, 0)
	if err != nil {
		return err
	}

	*r = *newRSI(period)

	return nil
}

// Window implements Indicator.
func (r *RSI) Window() int {
	return r.period + 1
}

// Update implements Indicator.
func (r *RSI) Update(bar types.Bar) optional.Option[float64] {
	if r.prevClose.IsNone() {
		r.prevClose = optional.Some(bar.Close)

		return r.value
	}

	change := bar.Close - r.prevClose.Unwrap()
	r.prevClose = optional.Some(bar.Close)

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	r.changes++
	n := float64(r.period)

	switch {
	case r.changes < r.period:
		r.gainSum.add(gain)
		r.lossSum.add(loss)

		return r.value
	case r.changes == r.period:
		r.gainSum.add(gain)
		r.lossSum.add(loss)
		r.avgGain = r.gainSum.value() / n
		r.avgLoss = r.lossSum.value() / n
	default:
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	}

	r.value = rsiFromAverages(r.avgGain, r.avgLoss)

	return r.value
}

// rsiFromAverages is undefined when nothing moved at all.
func rsiFromAverages(avgGain, avgLoss float64) optional.Option[float64] {
	if avgGain == 0 && avgLoss == 0 {
		return optional.None[float64]()
	}

	if avgLoss == 0 {
		return optional.Some(100.0)
	}

	rs := avgGain / avgLoss

	return optional.Some(100 - (100 / (1 + rs)))
}

// Value implements Indicator.
func (r *RSI) Value() optional.Option[float64] {
	return r.value
}

// Reset implements Indicator.
func (r *RSI) Reset() {
	*r = *newRSI(r.period)
}
