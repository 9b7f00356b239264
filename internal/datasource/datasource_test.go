package datasource_test

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/datasource"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/mocks"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DataSourceTestSuite struct {
	suite.Suite
	logger *logger.Logger
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) SetupTest() {
	suite.logger = logger.NewNopLogger()
}

func (suite *DataSourceTestSuite) TestMemory() {
	bars := mocks.Bars(1, 2, 3)

	series, err := datasource.LoadSeries(context.Background(), datasource.NewMemory(bars), "TEST")
	suite.Require().NoError(err)
	suite.Equal(bars, series.Bars)
	suite.Equal("TEST", series.Symbol)
}

func (suite *DataSourceTestSuite) TestLoadSeriesFillsSymbol() {
	bars := mocks.Bars(1, 2)
	for i := range bars {
		bars[i].Symbol = ""
	}

	series, err := datasource.LoadSeries(context.Background(), datasource.NewMemory(bars), "ETH")
	suite.Require().NoError(err)
	suite.Equal("ETH", series.Symbol)
	suite.Equal("ETH", series.Bars[1].Symbol)
}

func (suite *DataSourceTestSuite) TestLoadSeriesRejectsDuplicate() {
	bars := mocks.Bars(1, 2, 3, 4)
	bars[2].Time = bars[1].Time

	_, err := datasource.LoadSeries(context.Background(), datasource.NewMemory(bars), "TEST")
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeDuplicateTimestamp, errors.GetCode(err))

	index, ok := errors.DataErrorIndex(err)
	suite.True(ok)
	suite.Equal(2, index)
}

func (suite *DataSourceTestSuite) TestLoadSeriesWrapsSourceError() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	source := mocks.NewMockSource(ctrl)
	source.EXPECT().ReadAll(gomock.Any()).Return(iter.Seq2[types.Bar, error](func(yield func(types.Bar, error) bool) {
		yield(types.Bar{}, fmt.Errorf("disk on fire"))
	}))

	_, err := datasource.LoadSeries(context.Background(), source, "TEST")
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))
	suite.Contains(err.Error(), "disk on fire")
}

func (suite *DataSourceTestSuite) TestLoadSeriesCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := datasource.LoadSeries(ctx, datasource.NewMemory(mocks.Bars(1, 2)), "TEST")
	suite.Equal(errors.ErrCodeCanceled, errors.GetCode(err))
}

func (suite *DataSourceTestSuite) TestReadCSV() {
	content := `time,open,high,low,close,volume,symbol
2024-01-01T00:00:00Z,10,11,9,10.5,100,BTC
2024-01-01 01:00:00,10.5,12,10,11,200,BTC
1704074400,11,11.5,10.5,11.2,0,BTC
`
	var bars []types.Bar

	for bar, err := range datasource.ReadCSV(context.Background(), strings.NewReader(content)) {
		suite.Require().NoError(err)
		bars = append(bars, bar)
	}

	suite.Require().Len(bars, 3)
	suite.Equal(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), bars[1].Time)
	suite.Equal(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC).Add(time.Hour), bars[2].Time)
	suite.Equal(10.5, bars[0].Close)
	suite.Equal("BTC", bars[2].Symbol)
}

func (suite *DataSourceTestSuite) TestReadCSVNormalizesHeader() {
	content := "\ufeffClose, Time ,Open,HIGH,low,Volume\n10.5,2024-01-01T00:00:00Z,10,11,9,100\n"

	var bars []types.Bar

	for bar, err := range datasource.ReadCSV(context.Background(), strings.NewReader(content)) {
		suite.Require().NoError(err)
		bars = append(bars, bar)
	}

	suite.Require().Len(bars, 1)
	suite.Equal(10.5, bars[0].Close)
	suite.Equal(11.0, bars[0].High)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Empty(bars[0].Symbol)
}

func (suite *DataSourceTestSuite) TestReadCSVStopsEarly() {
	var content strings.Builder

	content.WriteString("time,open,high,low,close,volume\n")

	for i := 0; i < 50; i++ {
		fmt.Fprintf(&content, "%d,1,1,1,1,1\n", 1704067200+i*60)
	}

	count := 0

	for _, err := range datasource.ReadCSV(context.Background(), strings.NewReader(content.String())) {
		suite.Require().NoError(err)

		count++
		if count == 3 {
			break
		}
	}

	suite.Equal(3, count)
}

func (suite *DataSourceTestSuite) TestReadCSVErrors() {
	tests := []struct {
		name    string
		content string
		index   int
	}{
		{"missing column", "time,open,high,low,close\n", -1},
		{"bad number", "time,open,high,low,close,volume\n2024-01-01T00:00:00Z,x,1,1,1,1\n", 0},
		{"bad time", "time,open,high,low,close,volume\n2024-01-01T00:00:00Z,1,1,1,1,1\nnoon,1,1,1,1,1\n", 1},
		{"empty", "", -1},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			var lastErr error

			for _, err := range datasource.ReadCSV(context.Background(), strings.NewReader(tc.content)) {
				if err != nil {
					lastErr = err
				}
			}

			suite.Require().Error(lastErr)
			suite.Equal(errors.ErrCodeDataParseFailed, errors.GetCode(lastErr))

			if tc.index >= 0 {
				index, ok := errors.DataErrorIndex(lastErr)
				suite.True(ok)
				suite.Equal(tc.index, index)
			}
		})
	}
}

func (suite *DataSourceTestSuite) TestCSVFile() {
	path := filepath.Join(suite.T().TempDir(), "bars.csv")
	content := "time,open,high,low,close,volume\n2024-01-01T00:00:00Z,1,1,1,1,1\n2024-01-01T00:00:00Z,2,2,2,2,1\n"
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	_, err := datasource.LoadSeries(context.Background(), datasource.NewCSV(path, suite.logger), "TEST")
	suite.Equal(errors.ErrCodeDuplicateTimestamp, errors.GetCode(err))

	_, err = datasource.LoadSeries(context.Background(), datasource.NewCSV(path+".missing", suite.logger), "TEST")
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
}

func (suite *DataSourceTestSuite) writeParquet(bars []types.Bar) string {
	path := filepath.Join(suite.T().TempDir(), "bars.parquet")

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE market_data (time TIMESTAMP, symbol VARCHAR, open DOUBLE, high DOUBLE, low DOUBLE, close DOUBLE, volume DOUBLE)`)
	suite.Require().NoError(err)

	for _, bar := range bars {
		_, err = db.Exec(`INSERT INTO market_data VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bar.Time, bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		suite.Require().NoError(err)
	}

	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO '%s' (FORMAT PARQUET)`, path))
	suite.Require().NoError(err)

	return path
}

func (suite *DataSourceTestSuite) TestParquet() {
	generator := mocks.NewDataGenerator(3)
	config := mocks.DefaultConfig()
	config.Count = 20
	bars := generator.Generate(config)

	source, err := datasource.NewParquet(suite.writeParquet(bars), suite.logger)
	suite.Require().NoError(err)
	defer source.Close()

	count, err := source.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(20, count)

	series, err := datasource.LoadSeries(context.Background(), source, "")
	suite.Require().NoError(err)
	suite.Require().Equal(20, series.Len())

	for i := range bars {
		suite.True(bars[i].Time.Equal(series.Bars[i].Time))
		suite.Equal(bars[i].Close, series.Bars[i].Close)
	}

	source.SetRange(optional.Some(bars[5].Time), optional.Some(bars[9].Time))
	count, err = source.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(5, count)
}

func (suite *DataSourceTestSuite) TestParquetMissingFile() {
	_, err := datasource.NewParquet(filepath.Join(suite.T().TempDir(), "missing.parquet"), suite.logger)
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
}
