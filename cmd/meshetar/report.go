package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/backtest/results"
	"github.com/rxtech-lab/meshetar/internal/display"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/urfave/cli/v3"
)

func reportAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "expected one report path")
	}

	path, err := reportPath(cmd.Args().First())
	if err != nil {
		return err
	}

	report, err := engine.LoadReport(path)
	if err != nil {
		return err
	}

	if cmd.Bool("plain") {
		_, err := fmt.Fprintf(cmd.Root().Writer, "%s (%s)\n%s\n", report.Strategy, report.State, display.SummaryView(report.Summary))

		return err
	}

	if _, err := tea.NewProgram(display.NewReportModel(report), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal display failed: %w", err)
	}

	return nil
}

// reportPath accepts a report file or a results directory holding one.
func reportPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeDataNotFound, err, "report %s not found", path)
	}

	if info.IsDir() {
		return filepath.Join(path, results.ReportFile), nil
	}

	return path, nil
}
