package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/meshetar/internal/types"
)

// DataGenerator produces reproducible synthetic bars for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a generator. A fixed seed gives identical output.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig controls the generated price path.
type GeneratorConfig struct {
	Symbol    string
	StartTime time.Time
	// Interval between consecutive bars
	Interval     time.Duration
	Count        int
	InitialPrice float64
	// Volatility is the per bar standard deviation of returns (0.01 = 1%)
	Volatility float64
	// Trend is the total drift spread across the run
	Trend      float64
	VolumeBase float64
	// VolumeVariance in [0, 1]
	VolumeVariance float64
}

func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          1000,
		InitialPrice:   100.0,
		Volatility:     0.01,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate follows a geometric random walk. Every bar satisfies low <= open,close <= high
// and all prices stay positive.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	price := config.InitialPrice
	current := config.StartTime

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	for i := 0; i < config.Count; i++ {
		open := price

		closePrice := open * (1 + config.Volatility*g.rng.NormFloat64() + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) * (1 + g.rng.Float64()*config.Volatility*0.5)
		low := math.Min(open, closePrice) * (1 - g.rng.Float64()*config.Volatility*0.5)

		volume := config.VolumeBase * (1 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = 0
		}

		bars[i] = types.Bar{
			Symbol: config.Symbol,
			Time:   current,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		}

		price = closePrice
		current = current.Add(config.Interval)
	}

	return bars
}

// GenerateSeries wraps Generate in a Series.
func (g *DataGenerator) GenerateSeries(config GeneratorConfig) types.Series {
	return types.NewSeries(g.Generate(config))
}

// Bars builds hourly bars whose open, high, low and close all equal the given closes.
func Bars(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Symbol: "TEST",
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}

	return bars
}

// Series is Bars wrapped in a Series.
func Series(closes ...float64) types.Series {
	return types.NewSeries(Bars(closes...))
}

// Flat returns n bars that all trade at price.
func Flat(n int, price float64) types.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}

	return Series(closes...)
}
