// Package datasource yields bars from memory, CSV files or parquet files.
package datasource

import (
	"context"
	"iter"

	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
)

// Source yields bars in the order they were stored. Sources do not sort:
// out of order input is reported by LoadSeries, never repaired.
type Source interface {
	// ReadAll yields every bar. Iteration stops at the first error.
	ReadAll(ctx context.Context) iter.Seq2[types.Bar, error]
}

// LoadSeries drains src into a validated series. Bars without a symbol get
// the given one. The returned error is a DataError carrying the offending
// index when the data breaks a series invariant.
func LoadSeries(ctx context.Context, src Source, symbol string) (types.Series, error) {
	bars := make([]types.Bar, 0, 1024)

	for bar, err := range src.ReadAll(ctx) {
		if err != nil {
			if errors.GetCode(err) != errors.ErrCodeUnknown {
				return types.Series{}, err
			}

			return types.Series{}, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to read bars", err)
		}

		if bar.Symbol == "" {
			bar.Symbol = symbol
		}

		bars = append(bars, bar)
	}

	if err := ctx.Err(); err != nil {
		return types.Series{}, errors.Wrap(errors.ErrCodeCanceled, "loading bars canceled", err)
	}

	series := types.NewSeries(bars)
	if series.Symbol == "" {
		series.Symbol = symbol
	}

	if err := series.Validate(); err != nil {
		return types.Series{}, err
	}

	return series, nil
}

// Memory serves bars from a slice.
type Memory struct {
	bars []types.Bar
}

func NewMemory(bars []types.Bar) *Memory {
	return &Memory{bars: bars}
}

func (m *Memory) ReadAll(ctx context.Context) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range m.bars {
			if ctx.Err() != nil {
				return
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}
