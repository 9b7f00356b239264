package indicator

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// Batch recomputations used as the reference for the streaming indicators.

func batchSMA(closes []float64, period int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(closes))
	for i := range closes {
		if i+1 < period {
			out[i] = optional.None[float64]()

			continue
		}

		sum := 0.0
		for j := i + 1 - period; j <= i; j++ {
			sum += closes[j]
		}

		out[i] = optional.Some(sum / float64(period))
	}

	return out
}

func batchEMA(closes []float64, period int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(closes))
	alpha := 2.0 / float64(period+1)
	ema := 0.0

	for i := range closes {
		switch {
		case i+1 < period:
			out[i] = optional.None[float64]()

			continue
		case i+1 == period:
			sum := 0.0
			for j := 0; j < period; j++ {
				sum += closes[j]
			}

			ema = sum / float64(period)
		default:
			ema = alpha*closes[i] + (1-alpha)*ema
		}

		out[i] = optional.Some(ema)
	}

	return out
}

func batchRSI(closes []float64, period int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(closes))
	for i := range closes {
		out[i] = optional.None[float64]()
	}

	if len(closes) < period+1 {
		return out
	}

	gains := make([]float64, 0, len(closes))
	losses := make([]float64, 0, len(closes))

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i+1] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}

func batchBands(closes []float64, period int, k float64) []optional.Option[Bands] {
	out := make([]optional.Option[Bands], len(closes))
	for i := range closes {
		if i+1 < period {
			out[i] = optional.None[Bands]()

			continue
		}

		window := closes[i+1-period : i+1]

		sum := 0.0
		for _, c := range window {
			sum += c
		}

		middle := sum / float64(period)

		sq := 0.0
		for _, c := range window {
			d := c - middle
			sq += d * d
		}

		std := math.Sqrt(sq / float64(period))
		out[i] = optional.Some(Bands{Upper: middle + k*std, Middle: middle, Lower: middle - k*std})
	}

	return out
}

// randomWalk returns a reproducible positive price path.
func randomWalk(seed int64, n int) []types.Bar {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	bars := make([]types.Bar, n)

	for i := 0; i < n; i++ {
		open := price
		price *= 1 + rng.NormFloat64()*0.01
		bars[i] = types.Bar{
			Symbol: "TEST",
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   math.Max(open, price) * 1.001,
			Low:    math.Min(open, price) * 0.999,
			Close:  price,
			Volume: 1000,
		}
	}

	return bars
}

// levelWalk is a unit step walk around a high price level, where the band
// width is tiny next to the price.
func levelWalk(seed int64, n int, level float64) []types.Bar {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := level

	for i := range closes {
		price += rng.NormFloat64()
		closes[i] = price
	}

	return barsFromCloses(closes...)
}

func barsFromCloses(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{Symbol: "TEST", Time: start.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}

	return bars
}

func closesOf(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}

	return out
}

func relClose(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))

	return math.Abs(a-b) <= 1e-9*scale
}
