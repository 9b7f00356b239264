// Package sweep runs one backtest per parameter set on a bounded worker pool.
package sweep

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/meshetar/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/model"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one parameter set. Index is its position in the job list.
type Job struct {
	Index  int
	Name   string
	Config config.StrategyConfig
}

// Result is the outcome of one job. A failed job carries Err and, when the
// engine produced one, a partial Report.
type Result struct {
	Job    Job
	Report *engine.Report
	Err    error
}

// EngineFactory builds a fresh engine for one job. Engines are never shared
// between workers.
type EngineFactory func(cfg config.StrategyConfig) (engine.Engine, error)

// OnResultCallback is called once per finished job, from a single goroutine.
type OnResultCallback func(done, total int, result Result)

type Runner struct {
	workers  int
	factory  EngineFactory
	logger   *logger.Logger
	onResult *OnResultCallback
}

// NewRunner returns a runner with the given worker count. workers < 1 means one.
func NewRunner(workers int, factory EngineFactory, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Runner{
		workers:  max(workers, 1),
		factory:  factory,
		logger:   log.Named("sweep"),
		onResult: nil,
	}
}

// DefaultFactory builds v1 engines from the job config, using scores for
// model strategies.
func DefaultFactory(scores model.ScoreModel, log *logger.Logger) EngineFactory {
	return func(cfg config.StrategyConfig) (engine.Engine, error) {
		return engine_v1.NewBacktestEngineV1(cfg, nil, scores, log)
	}
}

// OnResult registers a progress callback.
func (r *Runner) OnResult(callback OnResultCallback) {
	r.onResult = &callback
}

// Run executes every job against series and returns results in job order.
// A job failure is recorded in its Result; only cancellation fails the sweep.
func (r *Runner) Run(ctx context.Context, series types.Series, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	resultCh := make(chan Result)
	done := make(chan struct{})

	go func() {
		defer close(done)

		finished := 0

		for result := range resultCh {
			finished++
			results[result.Job.Index] = result

			if result.Err != nil {
				r.logger.Warn("Sweep job failed",
					zap.String("job", result.Job.Name),
					zap.Error(result.Err),
				)
			}

			if r.onResult != nil {
				(*r.onResult)(finished, len(jobs), result)
			}
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for i, job := range jobs {
		job.Index = i

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			resultCh <- r.runJob(groupCtx, series, job)

			return nil
		})
	}

	err := group.Wait()
	close(resultCh)
	<-done

	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		return results, errors.Wrap(errors.ErrCodeCanceled, "sweep cancelled", err)
	}

	r.logger.Info("Sweep finished", zap.Int("jobs", len(jobs)), zap.Int("workers", r.workers))

	return results, nil
}

func (r *Runner) runJob(ctx context.Context, series types.Series, job Job) Result {
	eng, err := r.factory(job.Config)
	if err != nil {
		return Result{Job: job, Report: nil, Err: errors.Wrapf(errors.ErrCodeSweepFailed, err, "job %s", job.Name)}
	}

	report, err := eng.Run(ctx, series, engine.LifecycleCallbacks{})

	return Result{Job: job, Report: report, Err: err}
}

// Range returns from, from+step, ... up to and including to.
func Range(from, to, step int) ([]int, error) {
	if step <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "step must be positive, got %d", step)
	}

	if from < 1 || to < from {
		return nil, errors.Newf(errors.ErrCodeInvalidWindow, "invalid window range %d..%d", from, to)
	}

	values := []int{}
	for v := from; v <= to; v += step {
		values = append(values, v)
	}

	return values, nil
}

// Grid crosses fast and slow windows over base. Pairs with fast >= slow are skipped.
func Grid(base config.StrategyConfig, fast, slow []int) []Job {
	jobs := []Job{}

	for _, f := range fast {
		for _, s := range slow {
			if f >= s {
				continue
			}

			cfg := base
			cfg.FastWindow = f
			cfg.SlowWindow = s

			jobs = append(jobs, Job{
				Index:  len(jobs),
				Name:   fmt.Sprintf("fast=%d,slow=%d", f, s),
				Config: cfg,
			})
		}
	}

	return jobs
}

// Metric orders results in Rank.
type Metric string

const (
	MetricSharpe      Metric = "sharpe"
	MetricTotalReturn Metric = "total_return"
	MetricDrawdown    Metric = "max_drawdown"
)

// Rank returns successful results best first. Undefined Sharpe ratios sort
// last; ties keep job order.
func Rank(results []Result, metric Metric) []Result {
	ranked := []Result{}

	for _, result := range results {
		if result.Err == nil && result.Report != nil {
			ranked = append(ranked, result)
		}
	}

	slices.SortStableFunc(ranked, func(a, b Result) int {
		x, y := a.Report.Summary, b.Report.Summary

		switch metric {
		case MetricTotalReturn:
			return cmp.Compare(y.TotalReturn, x.TotalReturn)
		case MetricDrawdown:
			return cmp.Compare(x.MaxDrawdown, y.MaxDrawdown)
		default:
			switch {
			case x.Sharpe.IsNone() && y.Sharpe.IsNone():
				return 0
			case x.Sharpe.IsNone():
				return 1
			case y.Sharpe.IsNone():
				return -1
			}

			return cmp.Compare(y.Sharpe.Unwrap(), x.Sharpe.Unwrap())
		}
	})

	return ranked
}
