package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Bar is one OHLCV observation of a single instrument.
type Bar struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// Series is an ordered run of bars for one instrument.
type Series struct {
	Symbol string
	Bars   []Bar
}

// NewSeries builds a series from bars. The symbol is taken from the first bar.
func NewSeries(bars []Bar) Series {
	symbol := ""
	if len(bars) > 0 {
		symbol = bars[0].Symbol
	}

	return Series{
		Symbol: symbol,
		Bars:   bars,
	}
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.Bars)
}

// Prefix returns the first n bars. The backing array is shared.
func (s Series) Prefix(n int) Series {
	if n > len(s.Bars) {
		n = len(s.Bars)
	}

	if n < 0 {
		n = 0
	}

	return Series{Symbol: s.Symbol, Bars: s.Bars[:n]}
}

// Last returns the last n bars. n <= 0 returns the whole series.
func (s Series) Last(n int) Series {
	if n <= 0 || n >= len(s.Bars) {
		return s
	}

	return Series{Symbol: s.Symbol, Bars: s.Bars[len(s.Bars)-n:]}
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}

// Validate checks the series invariants: strictly increasing timestamps, finite positive
// prices and non-negative volume. The first violation is returned as a DataError.
func (s Series) Validate() error {
	if len(s.Bars) == 0 {
		return errors.NewDataError(errors.ErrCodeEmptySeries, 0, "series has no bars")
	}

	for i, bar := range s.Bars {
		if err := bar.validate(i); err != nil {
			return err
		}

		if i == 0 {
			continue
		}

		prev := s.Bars[i-1].Time
		switch {
		case bar.Time.Equal(prev):
			return errors.NewDataErrorf(errors.ErrCodeDuplicateTimestamp, i, "timestamp %s repeats bar %d", bar.Time.Format(time.RFC3339), i-1)
		case bar.Time.Before(prev):
			return errors.NewDataErrorf(errors.ErrCodeNonMonotonicTime, i, "timestamp %s is before bar %d", bar.Time.Format(time.RFC3339), i-1)
		}
	}

	return nil
}

func (b Bar) validate(index int) error {
	prices := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
	}

	for _, p := range prices {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return errors.NewDataErrorf(errors.ErrCodeNonFinitePrice, index, "%s is not finite", p.name)
		}

		if p.value <= 0 {
			return errors.NewDataErrorf(errors.ErrCodeNonPositivePrice, index, "%s %v must be positive", p.name, p.value)
		}
	}

	if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) {
		return errors.NewDataError(errors.ErrCodeNonFinitePrice, index, "volume is not finite")
	}

	if b.Volume < 0 {
		return errors.NewDataErrorf(errors.ErrCodeNegativeVolume, index, "volume %v must not be negative", b.Volume)
	}

	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC 3339, "2006-01-02 15:04:05", a bare date or unix seconds.
// Times without a zone are UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
