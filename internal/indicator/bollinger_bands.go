package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Bands are the three Bollinger lines at one bar.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands tracks mean +/- k population standard deviations of the close.
// Its primary value is %B: (close - lower) / (upper - lower).
//
// Sums are kept relative to an origin near the window mean so the variance
// does not cancel against the price level. The origin moves on every resync.
type BollingerBands struct {
	period  int
	stdDev  float64
	window  *ring
	origin  float64
	sum     compensatedSum
	sumSq   compensatedSum
	updates int
	bands   optional.Option[Bands]
	value   optional.Option[float64]
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return newBollingerBands(20, 2.0)
}

func newBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:  period,
		stdDev:  stdDev,
		window:  newRing(period),
		origin:  0,
		sum:     compensatedSum{},
		sumSq:   compensatedSum{},
		updates: 0,
		bands:   optional.None[Bands](),
		value:   optional.None[float64](),
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := periodParam(params, 0)
	if err != nil {
		return err
	}

	stdDev, err := floatParam(params, 1, "stdDev")
	if err != nil {
		return err
	}

	if stdDev <= 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be a positive number, got %f", stdDev)
	}

	*bb = *newBollingerBands(period, stdDev)

	return nil
}

// Window implements Indicator.
func (bb *BollingerBands) Window() int {
	return bb.period
}

// Update implements Indicator.
func (bb *BollingerBands) Update(bar types.Bar) optional.Option[float64] {
	x := bar.Close
	if bb.window.size == 0 {
		bb.origin = x
	}

	evicted, full := bb.window.push(x)

	// resync once per window length keeps the origin within one window of the mean
	bb.updates++
	if bb.updates%bb.period == 0 {
		bb.recompute()
	} else {
		if full {
			bb.remove(evicted)
		}

		bb.add(x)
	}

	if !bb.window.full() {
		return bb.value
	}

	n := float64(bb.window.size)
	shift := bb.sum.value() / n
	mean := bb.origin + shift
	std := math.Sqrt(math.Max(bb.sumSq.value()/n-shift*shift, 0))

	upper := mean + bb.stdDev*std
	lower := mean - bb.stdDev*std
	bb.bands = optional.Some(Bands{Upper: upper, Middle: mean, Lower: lower})

	// a zero width band has no defined %B
	if std <= 1e-12*math.Abs(mean) {
		bb.value = optional.None[float64]()

		return bb.value
	}

	bb.value = optional.Some((x - lower) / (upper - lower))

	return bb.value
}

func (bb *BollingerBands) add(x float64) {
	d := x - bb.origin
	bb.sum.add(d)
	bb.sumSq.add(d * d)
}

// remove subtracts exactly what add contributed for x, as the origin has not moved since.
func (bb *BollingerBands) remove(x float64) {
	d := x - bb.origin
	bb.sum.add(-d)
	bb.sumSq.add(-d * d)
}

// recompute re-centres the origin on the window mean and rebuilds both sums.
func (bb *BollingerBands) recompute() {
	total := windowSum(bb.window)
	bb.origin = total.value() / float64(bb.window.size)
	bb.sum.reset()
	bb.sumSq.reset()
	bb.window.each(bb.add)
}

// Bands returns the last computed bands. None during warm-up.
func (bb *BollingerBands) Bands() optional.Option[Bands] {
	return bb.bands
}

// Value implements Indicator.
func (bb *BollingerBands) Value() optional.Option[float64] {
	return bb.value
}

// Reset implements Indicator.
func (bb *BollingerBands) Reset() {
	*bb = *newBollingerBands(bb.period, bb.stdDev)
}
