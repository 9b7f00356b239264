package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/internal/version"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
	report *Report
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) SetupTest() {
	suite.report = &Report{
		RunID:         "run-1",
		EngineVersion: version.GetVersion(),
		Strategy:      "ma_crossover_2_3",
		State:         StateCompleted,
		Config:        config.TestConfig(2, 3),
		Summary:       types.Summary{Symbol: "TEST", Bars: 2, Sharpe: optional.None[float64]()},
		Signals:       []types.Signal{},
		Orders:        []types.Order{},
		Fills:         []types.Fill{},
		Trades:        []types.ClosedTrade{},
		Snapshots:     []types.LedgerSnapshot{{Index: 0, Equity: 100}, {Index: 1, Equity: 101}},
		Diagnostics:   []types.Diagnostic{},
	}
}

func (suite *ReportTestSuite) TestEncodeOmitsRunID() {
	var buf bytes.Buffer
	suite.Require().NoError(suite.report.Encode(&buf))

	suite.NotContains(buf.String(), "run-1")
	suite.Contains(buf.String(), `"sharpe": null`)
	suite.True(strings.HasSuffix(buf.String(), "}\n"))
}

func (suite *ReportTestSuite) TestDecodeRejectsNewerReports() {
	suite.report.EngineVersion = "v99.0.0"

	data, err := suite.report.MarshalIndent()
	suite.Require().NoError(err)

	_, err = DecodeReport(bytes.NewReader(data))
	suite.Equal(errors.ErrCodeReportIncompatible, errors.GetCode(err))
}

func (suite *ReportTestSuite) TestLoadReport() {
	path := filepath.Join(suite.T().TempDir(), "report.json")

	data, err := suite.report.MarshalIndent()
	suite.Require().NoError(err)
	suite.Require().NoError(os.WriteFile(path, data, 0644))

	loaded, err := LoadReport(path)
	suite.Require().NoError(err)
	suite.Equal([]float64{100, 101}, loaded.Equity())
	suite.Equal(StateCompleted, loaded.State)

	_, err = LoadReport(filepath.Join(suite.T().TempDir(), "missing.json"))
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))

	_, err = DecodeReport(strings.NewReader("{"))
	suite.Equal(errors.ErrCodeDataParseFailed, errors.GetCode(err))
}

func (suite *ReportTestSuite) TestTerminalStates() {
	suite.False(StateInitializing.IsTerminal())
	suite.False(StateRunning.IsTerminal())
	suite.True(StateCompleted.IsTerminal())
	suite.True(StateFailed.IsTerminal())
	suite.True(StateCancelled.IsTerminal())
}
