package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/internal/version"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ResultsTestSuite struct {
	suite.Suite
	writer *Writer
	report *engine.Report
}

func TestResultsSuite(t *testing.T) {
	suite.Run(t, new(ResultsTestSuite))
}

func (suite *ResultsTestSuite) SetupTest() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)

	suite.writer, err = NewWriter(log)
	suite.Require().NoError(err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	snapshots := make([]types.LedgerSnapshot, 0, 600)
	for i := range 600 {
		snapshots = append(snapshots, types.LedgerSnapshot{
			Index:    i,
			Time:     start.Add(time.Duration(i) * time.Minute),
			Close:    100 + float64(i%7),
			Cash:     1000,
			Quantity: 0,
			Equity:   1000 + float64(i),
		})
	}

	suite.report = &engine.Report{
		RunID:         "run-42",
		EngineVersion: version.GetVersion(),
		Strategy:      "ma_crossover_2_3",
		State:         engine.StateCompleted,
		Config:        config.TestConfig(2, 3),
		Summary:       types.Summary{Symbol: "TEST", Bars: 600, Sharpe: optional.None[float64]()},
		Signals:       []types.Signal{},
		Orders: []types.Order{
			{
				ID: "ord-000001", Symbol: "TEST", Side: types.PurchaseTypeBuy, Type: types.OrderTypeMarket,
				Quantity: 1, LimitPrice: optional.None[float64](), IssuedIndex: 2, IssuedAt: start,
				Status: types.OrderStatusFilled, Reason: types.Reason{Reason: types.OrderReasonStrategy},
			},
			{
				ID: "ord-000002", Symbol: "TEST", Side: types.PurchaseTypeSell, Type: types.OrderTypeLimit,
				Quantity: 1, LimitPrice: optional.Some(105.0), IssuedIndex: 5, IssuedAt: start,
				Status: types.OrderStatusCancelled, Reason: types.Reason{Reason: types.OrderReasonEndOfData},
			},
		},
		Fills: []types.Fill{
			{OrderID: "ord-000001", Symbol: "TEST", Side: types.PurchaseTypeBuy, Quantity: 1, Price: 101, Fee: 0.5, Index: 3, Time: start},
		},
		Trades:      []types.ClosedTrade{},
		Snapshots:   snapshots,
		Diagnostics: []types.Diagnostic{},
	}
}

func (suite *ResultsTestSuite) TearDownTest() {
	suite.NoError(suite.writer.Close())
}

func (suite *ResultsTestSuite) TestWriteCreatesAllFiles() {
	dir := filepath.Join(suite.T().TempDir(), "out")

	suite.Require().NoError(suite.writer.Write(context.Background(), dir, suite.report))

	for _, file := range []string{ReportFile, StatsFile, OrdersFile, FillsFile, SnapshotsFile} {
		_, err := os.Stat(filepath.Join(dir, file))
		suite.NoError(err, file)
	}
}

func (suite *ResultsTestSuite) TestReportRoundTrip() {
	dir := suite.T().TempDir()
	suite.Require().NoError(suite.writer.Write(context.Background(), dir, suite.report))

	loaded, err := engine.LoadReport(filepath.Join(dir, ReportFile))
	suite.Require().NoError(err)

	suite.Equal(suite.report.Strategy, loaded.Strategy)
	suite.Equal(suite.report.Equity(), loaded.Equity())
	suite.Len(loaded.Orders, 2)
	suite.True(loaded.Orders[1].LimitPrice.IsSome())
}

func (suite *ResultsTestSuite) TestStatsKeepRunID() {
	dir := suite.T().TempDir()
	suite.Require().NoError(suite.writer.Write(context.Background(), dir, suite.report))

	stats, err := ReadStats(filepath.Join(dir, StatsFile))
	suite.Require().NoError(err)

	suite.Equal("run-42", stats.RunID)
	suite.Equal(engine.StateCompleted, stats.State)
	suite.Nil(stats.Sharpe)
	suite.Equal(600, stats.Summary.Bars)

	suite.report.Summary.Sharpe = optional.Some(1.25)
	stats = NewStats(suite.report)
	suite.Require().NotNil(stats.Sharpe)
	suite.Equal(1.25, *stats.Sharpe)
}

func (suite *ResultsTestSuite) TestSnapshotsParquetRoundTrip() {
	dir := suite.T().TempDir()
	ctx := context.Background()
	suite.Require().NoError(suite.writer.Write(ctx, dir, suite.report))

	snapshots, err := suite.writer.ReadSnapshots(ctx, dir)
	suite.Require().NoError(err)

	suite.Len(snapshots, 600)
	suite.Equal(suite.report.Snapshots[0], snapshots[0])
	suite.Equal(suite.report.Snapshots[599], snapshots[599])
}

func (suite *ResultsTestSuite) TestWriteTwiceReplacesTables() {
	ctx := context.Background()
	suite.Require().NoError(suite.writer.Write(ctx, suite.T().TempDir(), suite.report))

	dir := suite.T().TempDir()
	suite.report.Snapshots = suite.report.Snapshots[:4]
	suite.Require().NoError(suite.writer.Write(ctx, dir, suite.report))

	snapshots, err := suite.writer.ReadSnapshots(ctx, dir)
	suite.Require().NoError(err)
	suite.Len(snapshots, 4)
}

func (suite *ResultsTestSuite) TestErrors() {
	suite.Equal(errors.ErrCodeBacktestResultsFailed, errors.GetCode(suite.writer.Write(context.Background(), suite.T().TempDir(), nil)))

	_, err := suite.writer.ReadSnapshots(context.Background(), suite.T().TempDir())
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))

	_, err = ReadStats(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
}

func (suite *ResultsTestSuite) TestFolder() {
	suite.Equal(
		filepath.Join("results", "ma_crossover_2_3_gate_0.5", "fast", "btc"),
		Folder("results", "ma_crossover_2_3+gate(0.5)", "configs/fast.yaml", "data/btc.parquet"),
	)
}
