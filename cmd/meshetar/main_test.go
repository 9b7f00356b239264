package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/backtest/results"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/version"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"
)

type CommandTestSuite struct {
	suite.Suite
	dir        string
	configPath string
	dataPath   string
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func (suite *CommandTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	content, err := config.TestConfig(2, 3).Marshal()
	suite.Require().NoError(err)

	suite.configPath = filepath.Join(suite.dir, "fast.yaml")
	suite.Require().NoError(os.WriteFile(suite.configPath, content, 0644))

	var csv strings.Builder
	csv.WriteString("time,open,high,low,close,volume\n")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []float64{10, 11, 12, 11, 10, 9, 10, 11, 12, 13} {
		fmt.Fprintf(&csv, "%s,%g,%g,%g,%g,100\n", start.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), c, c+0.5, c-0.5, c)
	}

	suite.dataPath = filepath.Join(suite.dir, "bars.csv")
	suite.Require().NoError(os.WriteFile(suite.dataPath, []byte(csv.String()), 0644))
}

func (suite *CommandTestSuite) execute(args ...string) (string, error) {
	var out bytes.Buffer

	cmd := newCommand()
	cmd.Writer = &out
	cmd.ErrWriter = io.Discard

	err := cmd.Run(context.Background(), append([]string{"meshetar"}, args...))

	return out.String(), err
}

func (suite *CommandTestSuite) TestVersion() {
	out, err := suite.execute("version")
	suite.Require().NoError(err)
	suite.Equal(version.GetVersion()+"\n", out)
}

func (suite *CommandTestSuite) TestSweepWorkersDefaultToCPUCount() {
	sweepCmd := newCommand().Command("sweep")
	suite.Require().NotNil(sweepCmd)

	var workers *cli.IntFlag

	for _, flag := range sweepCmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == "workers" {
			workers = f
		}
	}

	suite.Require().NotNil(workers)
	suite.Equal(int64(runtime.NumCPU()), workers.Value)
}

func (suite *CommandTestSuite) TestSchema() {
	out, err := suite.execute("schema")
	suite.Require().NoError(err)
	suite.Contains(out, "fast_window")

	dir := filepath.Join(suite.dir, "schema")
	_, err = suite.execute("schema", "--output", dir)
	suite.Require().NoError(err)

	sample, err := os.ReadFile(filepath.Join(dir, sampleConfigName))
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(string(sample), "# yaml-language-server: $schema="+schemaName))

	_, err = config.Load(filepath.Join(dir, sampleConfigName))
	suite.NoError(err)
}

func (suite *CommandTestSuite) TestRunWritesResultsAndReportOpensThem() {
	root := filepath.Join(suite.dir, "results")

	out, err := suite.execute("run", "--config", suite.configPath, "--data", suite.dataPath, "--results", root, "--log-level", "error")
	suite.Require().NoError(err)
	suite.Contains(out, "Total return")

	dir := results.Folder(root, "ma_crossover_2_3", suite.configPath, suite.dataPath)

	report, err := engine.LoadReport(filepath.Join(dir, results.ReportFile))
	suite.Require().NoError(err)
	suite.Equal(engine.StateCompleted, report.State)
	suite.Len(report.Snapshots, 10)

	out, err = suite.execute("report", "--plain", dir)
	suite.Require().NoError(err)
	suite.Contains(out, "ma_crossover_2_3 (completed)")
}

func (suite *CommandTestSuite) TestSweep() {
	out, err := suite.execute("sweep", "--config", suite.configPath, "--data", suite.dataPath,
		"--fast", "2,3,1", "--slow", "4,5,1", "--workers", "2", "--log-level", "error")
	suite.Require().NoError(err)

	suite.Contains(out, "fast=2,slow=4")
	suite.Contains(out, "fast=3,slow=5")
}

func (suite *CommandTestSuite) TestErrors() {
	_, err := suite.execute("run", "--data", filepath.Join(suite.dir, "bars.txt"))
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	_, err = suite.execute("report", filepath.Join(suite.dir, "missing"))
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))

	_, err = suite.execute("sweep", "--data", suite.dataPath, "--fast", "9,9,1", "--slow", "3,4,1")
	suite.Equal(errors.ErrCodeInvalidWindow, errors.GetCode(err))
}

func (suite *CommandTestSuite) TestParseRange() {
	values, err := parseRange("2, 6, 2")
	suite.Require().NoError(err)
	suite.Equal([]int{2, 4, 6}, values)

	values, err = parseRange("7")
	suite.Require().NoError(err)
	suite.Equal([]int{7}, values)

	_, err = parseRange("2,6")
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	_, err = parseRange("a,b,c")
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}
