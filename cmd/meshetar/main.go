package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/datasource"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/model"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/internal/version"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	schemaName       = "meshetar-config.json"
	sampleConfigName = "meshetar-config.yaml"
)

func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Strategy config `FILE` (YAML). Defaults are used when omitted",
		},
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Bar data `FILE` (.csv or .parquet)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "scores",
			Aliases: []string{"s"},
			Usage:   "Model score `FILE` (CSV of time,score or time,label)",
		},
		&cli.StringFlag{
			Name:    "results",
			Aliases: []string{"r"},
			Usage:   "Results root `DIR`. Nothing is written when empty",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "info",
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "meshetar",
		Usage:   "Backtest moving average crossover and model score strategies",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one backtest",
				Flags: append(dataFlags(),
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show the run live in the terminal",
					},
				),
				Action: runAction,
			},
			{
				Name:  "sweep",
				Usage: "Run a fast/slow window grid in parallel and rank the results",
				Flags: append(dataFlags(),
					&cli.StringFlag{
						Name:  "fast",
						Usage: "Fast windows as `FROM,TO,STEP`",
						Value: "2,20,2",
					},
					&cli.StringFlag{
						Name:  "slow",
						Usage: "Slow windows as `FROM,TO,STEP`",
						Value: "10,60,5",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Parallel engines",
						Value:   int64(runtime.NumCPU()),
					},
					&cli.StringFlag{
						Name:  "rank",
						Usage: "Ranking metric (sharpe, total_return, max_drawdown)",
						Value: "sharpe",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Rows shown in the ranking (0 for all)",
						Value: 10,
					},
				),
				Action: sweepAction,
			},
			{
				Name:  "schema",
				Usage: "Write the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output `DIR`. The schema is printed when empty",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "version",
				Usage: "Print the engine version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

					return err
				},
			},
			{
				Name:      "report",
				Usage:     "Open a saved report",
				ArgsUsage: "<report.json | results dir>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "Print the summary instead of opening the terminal display",
					},
				},
				Action: reportAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(cmd *cli.Command, quiet bool) (*logger.Logger, error) {
	if quiet {
		return logger.NewNopLogger(), nil
	}

	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return logger.NewLoggerWithLevel(level)
}

func loadConfig(path string) (config.StrategyConfig, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}

	return config.Load(path)
}

// loadSeries picks the bar source from the file extension.
func loadSeries(ctx context.Context, path, symbol string, log *logger.Logger) (types.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return datasource.LoadSeries(ctx, datasource.NewCSV(path, log), symbol)
	case ".parquet":
		src, err := datasource.NewParquet(path, log)
		if err != nil {
			return types.Series{}, err
		}
		defer src.Close()

		return datasource.LoadSeries(ctx, src, symbol)
	}

	return types.Series{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file %s", path)
}

// loadScores returns nil when path is empty.
func loadScores(path string, series types.Series) (model.ScoreModel, error) {
	if path == "" {
		return nil, nil
	}

	scores, err := model.LoadScoreFile(path, series)
	if err != nil {
		return nil, err
	}

	return scores, nil
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.EmptyConfig()

	schemaJSON, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	dir := cmd.String("output")
	if dir == "" {
		_, err := fmt.Fprintln(cmd.Root().Writer, schemaJSON)

		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, schemaName), []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	samplePath := filepath.Join(dir, sampleConfigName)
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(config.DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

		if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
			return fmt.Errorf("failed to write sample config to file: %w", err)
		}
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "Schema written to %s\n", dir)

	return err
}
