package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rxtech-lab/meshetar/internal/backtest/results"
	"github.com/rxtech-lab/meshetar/internal/display"
	"github.com/rxtech-lab/meshetar/internal/sweep"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func sweepAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	fast, err := parseRange(cmd.String("fast"))
	if err != nil {
		return err
	}

	slow, err := parseRange(cmd.String("slow"))
	if err != nil {
		return err
	}

	jobs := sweep.Grid(cfg, fast, slow)
	if len(jobs) == 0 {
		return errors.New(errors.ErrCodeInvalidWindow, "no fast window is below any slow window")
	}

	series, err := loadSeries(ctx, cmd.String("data"), cfg.Symbol, log)
	if err != nil {
		return err
	}

	scores, err := loadScores(cmd.String("scores"), series)
	if err != nil {
		return err
	}

	runner := sweep.NewRunner(int(cmd.Int("workers")), sweep.DefaultFactory(scores, log.Named("engine")), log)

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
		progressbar.OptionSetDescription(fmt.Sprintf("Sweeping %d parameter sets", len(jobs))),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	runner.OnResult(func(done, total int, result sweep.Result) {
		_ = bar.Set(done)
	})

	all, err := runner.Run(ctx, series, jobs)
	_ = bar.Finish()

	if err != nil {
		return err
	}

	if root := cmd.String("results"); root != "" {
		writer, err := results.NewWriter(log)
		if err != nil {
			return err
		}
		defer writer.Close()

		for _, result := range all {
			if result.Report == nil {
				continue
			}

			dir := results.Folder(root, result.Report.Strategy, cmd.String("config"), cmd.String("data"))
			if err := writer.Write(ctx, dir, result.Report); err != nil {
				return err
			}
		}

		log.Info("Sweep results written", zap.String("root", root), zap.Int("runs", len(all)))
	}

	ranked := sweep.Rank(all, sweep.Metric(cmd.String("rank")))
	fmt.Fprintln(cmd.Root().Writer, display.RankingView(ranked, int(cmd.Int("top"))))

	if failed := len(all) - len(ranked); failed > 0 {
		fmt.Fprintf(cmd.Root().Writer, "%d of %d runs failed\n", failed, len(all))
	}

	return nil
}

// parseRange parses FROM,TO,STEP. A single value is a one element range.
func parseRange(value string) ([]int, error) {
	parts := strings.Split(value, ",")

	numbers := make([]int, 0, 3)
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid range %q", value)
		}

		numbers = append(numbers, n)
	}

	switch len(numbers) {
	case 1:
		return sweep.Range(numbers[0], numbers[0], 1)
	case 3:
		return sweep.Range(numbers[0], numbers[1], numbers[2])
	}

	return nil, errors.Newf(errors.ErrCodeInvalidParameter, "range %q must be FROM,TO,STEP", value)
}
