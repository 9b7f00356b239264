package types

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
	start time.Time
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *MarketTestSuite) bars(closes ...float64) []Bar {
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{
			Symbol: "TEST",
			Time:   suite.start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 10,
		}
	}

	return bars
}

func (suite *MarketTestSuite) TestNewSeries() {
	series := NewSeries(suite.bars(1, 2, 3))
	suite.Equal("TEST", series.Symbol)
	suite.Equal(3, series.Len())
	suite.Equal([]float64{1, 2, 3}, series.Closes())

	suite.Equal("", NewSeries(nil).Symbol)
}

func (suite *MarketTestSuite) TestPrefixAndLast() {
	series := NewSeries(suite.bars(1, 2, 3, 4, 5))

	suite.Equal([]float64{1, 2}, series.Prefix(2).Closes())
	suite.Equal(5, series.Prefix(10).Len())
	suite.Equal(0, series.Prefix(-1).Len())

	suite.Equal([]float64{4, 5}, series.Last(2).Closes())
	suite.Equal(5, series.Last(0).Len())
	suite.Equal(5, series.Last(9).Len())
}

func (suite *MarketTestSuite) TestValidateOK() {
	suite.NoError(NewSeries(suite.bars(10, 11, 12)).Validate())
}

func (suite *MarketTestSuite) TestValidateFailures() {
	tests := []struct {
		name  string
		mut   func([]Bar)
		code  errors.ErrorCode
		index int
	}{
		{
			name:  "duplicate timestamp",
			mut:   func(b []Bar) { b[2].Time = b[1].Time },
			code:  errors.ErrCodeDuplicateTimestamp,
			index: 2,
		},
		{
			name:  "out of order",
			mut:   func(b []Bar) { b[1].Time = b[0].Time.Add(-time.Hour) },
			code:  errors.ErrCodeNonMonotonicTime,
			index: 1,
		},
		{
			name:  "nan close",
			mut:   func(b []Bar) { b[0].Close = math.NaN() },
			code:  errors.ErrCodeNonFinitePrice,
			index: 0,
		},
		{
			name:  "zero open",
			mut:   func(b []Bar) { b[1].Open = 0 },
			code:  errors.ErrCodeNonPositivePrice,
			index: 1,
		},
		{
			name:  "negative volume",
			mut:   func(b []Bar) { b[2].Volume = -1 },
			code:  errors.ErrCodeNegativeVolume,
			index: 2,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bars := suite.bars(10, 11, 12)
			tc.mut(bars)

			err := NewSeries(bars).Validate()
			suite.Error(err)
			suite.True(errors.IsDataError(err))
			suite.Equal(tc.code, errors.GetCode(err))

			index, ok := errors.DataErrorIndex(err)
			suite.True(ok)
			suite.Equal(tc.index, index)
		})
	}
}

func (suite *MarketTestSuite) TestValidateEmpty() {
	err := NewSeries(nil).Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}
