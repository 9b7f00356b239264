package main

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/meshetar/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/meshetar/internal/backtest/results"
	"github.com/rxtech-lab/meshetar/internal/display"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const progressThrottle = 65 * time.Millisecond

func runAction(ctx context.Context, cmd *cli.Command) error {
	tui := cmd.Bool("tui")

	log, err := newLogger(cmd, tui)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	series, err := loadSeries(ctx, cmd.String("data"), cfg.Symbol, log)
	if err != nil {
		return err
	}

	scores, err := loadScores(cmd.String("scores"), series)
	if err != nil {
		return err
	}

	eng, err := engine_v1.NewBacktestEngineV1(cfg, nil, scores, log)
	if err != nil {
		return err
	}

	var report *engine.Report

	if tui {
		report, err = runWithDisplay(ctx, eng, series)
	} else {
		report, err = runWithProgress(ctx, eng, series, cmd.Root().ErrWriter)
	}

	if report == nil {
		return err
	}

	if root := cmd.String("results"); root != "" {
		dir := results.Folder(root, report.Strategy, cmd.String("config"), cmd.String("data"))
		if writeErr := writeResults(ctx, log, dir, report); writeErr != nil {
			return writeErr
		}

		log.Info("Results written", zap.String("dir", dir))
	}

	if !tui {
		fmt.Fprintln(cmd.Root().Writer, display.SummaryView(report.Summary))
	}

	return err
}

func runWithProgress(ctx context.Context, eng engine.Engine, series types.Series, out io.Writer) (*engine.Report, error) {
	bar := progressbar.NewOptions(len(series.Bars),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", series.Symbol)),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(progressThrottle),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	onProcess := engine.OnProcessDataCallback(func(current, total int) error {
		return bar.Set(current)
	})

	return eng.Run(ctx, series, engine.LifecycleCallbacks{OnProcessData: &onProcess})
}

// runWithDisplay runs the engine while the terminal display consumes its
// events. Quitting the display cancels the run.
func runWithDisplay(ctx context.Context, eng engine.Engine, series types.Series) (*engine.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(display.NewModel(), tea.WithAltScreen())

	type outcome struct {
		report *engine.Report
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		report, err := eng.Run(ctx, series, display.Callbacks(p))
		done <- outcome{report: report, err: err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done

		return nil, fmt.Errorf("terminal display failed: %w", err)
	}

	cancel()
	result := <-done

	return result.report, result.err
}

func writeResults(ctx context.Context, log *logger.Logger, dir string, report *engine.Report) error {
	writer, err := results.NewWriter(log)
	if err != nil {
		return err
	}
	defer writer.Close()

	return writer.Write(ctx, dir, report)
}
