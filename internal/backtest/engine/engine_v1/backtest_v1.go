package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/execution"
	"github.com/rxtech-lab/meshetar/internal/indicator"
	"github.com/rxtech-lab/meshetar/internal/ledger"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/model"
	"github.com/rxtech-lab/meshetar/internal/strategy"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/internal/version"
	"github.com/rxtech-lab/meshetar/pkg/errors"
	"go.uber.org/zap"
)

type BacktestEngineV1 struct {
	config            config.StrategyConfig
	strategy          strategy.Strategy
	scores            model.ScoreModel
	indicatorRegistry indicator.IndicatorRegistry
	log               *logger.Logger
	state             engine.State
}

// NewBacktestEngineV1 validates cfg and builds an engine for it. A nil
// strategy is built from cfg; a nil score model means no bar has a score.
func NewBacktestEngineV1(cfg config.StrategyConfig, strat strategy.Strategy, scores model.ScoreModel, log *logger.Logger) (engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	if strat == nil {
		var err error

		strat, err = strategy.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Strategy == config.StrategyModel && scores == nil {
		return nil, errors.New(errors.ErrCodeStrategyConfigError, "model strategy requires a score model")
	}

	return &BacktestEngineV1{
		config:            cfg,
		strategy:          strat,
		scores:            scores,
		indicatorRegistry: indicator.NewDefaultRegistry(),
		log:               log.Named("backtest"),
		state:             engine.StateInitializing,
	}, nil
}

func (b *BacktestEngineV1) State() engine.State {
	return b.state
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	schema, err := b.config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, series types.Series, callbacks engine.LifecycleCallbacks) (report *engine.Report, err error) {
	b.state = engine.StateInitializing

	defer func() {
		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(b.state, report, err)
		}
	}()

	r, err := b.prepare(series)
	if err != nil {
		b.log.Error("Backtest failed before processing", zap.Error(err))
		b.transition(engine.StateFailed, callbacks)

		return nil, err
	}

	r.events = callbacks.OnEvent

	b.log.Debug("Running backtest",
		zap.String("run_id", r.runID),
		zap.String("strategy", b.strategy.Name()),
		zap.Int("bars", r.series.Len()),
	)

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(r.runID, b.strategy.Name(), r.series.Len()); err != nil {
			b.transition(engine.StateFailed, callbacks)

			return nil, errors.Wrap(errors.ErrCodeCallbackAborted, "run start callback aborted the run", err)
		}
	}

	b.transition(engine.StateRunning, callbacks)

	total := r.series.Len()

	for i, bar := range r.series.Bars {
		if err := ctx.Err(); err != nil {
			return b.cancel(r, callbacks, err)
		}

		if err := r.step(i, bar, i == total-1); err != nil {
			return b.abort(r, callbacks, err)
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, total); err != nil {
				return b.abort(r, callbacks, errors.Wrap(errors.ErrCodeCallbackAborted, "process data callback aborted the run", err))
			}
		}
	}

	if err := r.finish(total - 1); err != nil {
		return b.abort(r, callbacks, err)
	}

	b.transition(engine.StateCompleted, callbacks)

	b.log.Debug("Backtest completed",
		zap.String("run_id", r.runID),
		zap.Int("fills", len(r.ledger.Fills())),
		zap.Int("diagnostics", len(r.diagnostics)),
	)

	return r.report(engine.StateCompleted), nil
}

// prepare validates the series and sets up the private state of one run.
func (b *BacktestEngineV1) prepare(series types.Series) (*run, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	scores := b.scores
	if n := b.config.LastNBars; n > 0 && n < series.Len() {
		offset := series.Len() - n
		series = series.Last(n)

		if scores != nil {
			scores = model.NewOffset(scores, offset)
		}
	}

	if series.Symbol == "" {
		series.Symbol = b.config.Symbol
	}

	set, err := indicator.NewSet(b.indicatorRegistry, b.strategy.Indicators()...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create indicators", err)
	}

	return &run{
		runID:       uuid.New().String(),
		config:      b.config,
		series:      series,
		strategy:    b.strategy,
		scores:      scores,
		indicators:  set,
		previous:    indicator.Values{},
		simulator:   execution.NewSimulator(b.config, b.log),
		ledger:      ledger.NewLedger(series.Symbol, b.config.InitialCapital),
		pending:     -1,
		signals:     []types.Signal{},
		orders:      []types.Order{},
		diagnostics: []types.Diagnostic{},
		events:      nil,
		log:         b.log,
	}, nil
}

func (b *BacktestEngineV1) cancel(r *run, callbacks engine.LifecycleCallbacks, cause error) (*engine.Report, error) {
	b.log.Info("Backtest cancelled", zap.String("run_id", r.runID), zap.Int("bars", len(r.ledger.Snapshots())))

	if last := len(r.ledger.Snapshots()) - 1; last >= 0 {
		r.cancelPending(last, "run cancelled")
	}

	b.transition(engine.StateCancelled, callbacks)

	return r.report(engine.StateCancelled), errors.Wrap(errors.ErrCodeCanceled, "backtest cancelled", cause)
}

func (b *BacktestEngineV1) abort(r *run, callbacks engine.LifecycleCallbacks, cause error) (*engine.Report, error) {
	b.log.Error("Backtest aborted", zap.String("run_id", r.runID), zap.Error(cause))
	b.transition(engine.StateFailed, callbacks)

	return r.report(engine.StateFailed), cause
}

func (b *BacktestEngineV1) transition(to engine.State, callbacks engine.LifecycleCallbacks) {
	from := b.state
	b.state = to

	if callbacks.OnStateChange != nil {
		(*callbacks.OnStateChange)(from, to)
	}
}

// run is the private state of a single backtest. It is never shared.
type run struct {
	runID      string
	config     config.StrategyConfig
	series     types.Series
	strategy   strategy.Strategy
	scores     model.ScoreModel
	indicators *indicator.Set
	previous   indicator.Values
	simulator  *execution.Simulator
	ledger     *ledger.Ledger
	// pending is the index into orders of the order waiting for the next bar, -1 when none.
	pending     int
	signals     []types.Signal
	orders      []types.Order
	diagnostics []types.Diagnostic
	events      *engine.OnEventCallback
	eventErr    error
	log         *logger.Logger
}

// step processes bar i. It only ever reads bars[0..i].
func (r *run) step(i int, bar types.Bar, last bool) error {
	if r.pending >= 0 {
		r.execute(r.pending, bar, i, false)
		r.pending = -1
	}

	values := r.indicators.Update(bar)
	score := r.score(i, bar)

	signal := r.strategy.Next(strategy.MarketContext{
		Index:    i,
		Bar:      bar,
		Values:   values,
		Previous: r.previous,
		Score:    score,
		Stance:   r.simulator.Stance(),
	})
	r.previous = values
	r.signals = append(r.signals, signal)
	r.emit(types.EventKindSignal, i, bar, signal)

	order, err := r.simulator.OnSignal(signal, bar, r.ledger.Position(), r.ledger.EquityAt(bar.Close))
	if err != nil {
		r.noFill(i, bar, err)
	}

	if order.IsSome() {
		idx := r.addOrder(order.Unwrap(), bar)

		if r.simulator.Lag() == config.ExecutionLagSameBar {
			r.execute(idx, bar, i, false)
		} else {
			r.pending = idx
		}
	}

	if last && r.config.CloseAtEnd {
		r.cancelPending(i, "flattened at end of data")

		if closing := r.simulator.Close(bar, i, r.ledger.Position()); closing.IsSome() {
			r.execute(r.addOrder(closing.Unwrap(), bar), bar, i, true)
		}
	}

	snapshot := r.ledger.Mark(i, bar)
	r.emit(types.EventKindSnapshot, i, bar, snapshot)

	return r.eventErr
}

// finish cancels an order still waiting for a bar that will never come.
func (r *run) finish(last int) error {
	if last >= 0 {
		r.cancelPending(last, "no bar left to fill")
	}

	return r.eventErr
}

// score returns the model score for bar i. Scores that are not finite or fall
// outside [-1, 1] are dropped with a diagnostic.
func (r *run) score(i int, bar types.Bar) optional.Option[float64] {
	if r.scores == nil {
		return optional.None[float64]()
	}

	score := r.scores.Score(i)
	if score.IsNone() {
		return score
	}

	s := score.Unwrap()

	switch {
	case math.IsNaN(s) || math.IsInf(s, 0):
		r.diagnose(i, bar, errors.Newf(errors.ErrCodeNonFiniteScore, "model score %v is not finite", s), types.EventKindDiagnostic)

		return optional.None[float64]()
	case s < -1 || s > 1:
		r.diagnose(i, bar, errors.Newf(errors.ErrCodeScoreOutOfRange, "model score %v is outside [-1, 1]", s), types.EventKindDiagnostic)

		return optional.None[float64]()
	}

	return score
}

func (r *run) addOrder(order types.Order, bar types.Bar) int {
	r.orders = append(r.orders, order)
	r.emit(types.EventKindOrder, order.IssuedIndex, bar, order)

	return len(r.orders) - 1
}

// execute fills orders[idx] against bar i, or rejects it.
func (r *run) execute(idx int, bar types.Bar, i int, atClose bool) {
	order := r.orders[idx]
	position := r.ledger.Position()

	var (
		fill types.Fill
		err  error
	)

	if atClose {
		fill, err = r.simulator.FillAtClose(order, bar, i, position, r.ledger.Cash())
	} else {
		fill, err = r.simulator.Fill(order, bar, i, position, r.ledger.Cash())
	}

	if err != nil {
		r.orders[idx].Status = types.OrderStatusRejected
		r.noFill(i, bar, errors.Wrapf(errors.GetCode(err), err, "order %s rejected", order.ID))

		return
	}

	r.orders[idx].Status = types.OrderStatusFilled
	r.ledger.Apply(fill)
	r.emit(types.EventKindFill, i, bar, fill)
}

func (r *run) cancelPending(i int, reason string) {
	if r.pending < 0 {
		return
	}

	order := r.orders[r.pending]
	r.orders[r.pending].Status = types.OrderStatusCancelled
	r.pending = -1

	bar := r.series.Bars[i]
	r.noFill(i, bar, errors.Newf(errors.ErrCodeOrderCancelledAtEnd, "order %s cancelled: %s", order.ID, reason))
}

func (r *run) noFill(i int, bar types.Bar, err error) {
	r.diagnose(i, bar, err, types.EventKindNoFill)
}

func (r *run) diagnose(i int, bar types.Bar, err error, kind types.EventKind) {
	diagnostic := types.NewDiagnostic(i, bar.Time, err)
	r.diagnostics = append(r.diagnostics, diagnostic)

	r.log.Debug("Diagnostic",
		zap.Int("bar", i),
		zap.Int("code", int(diagnostic.Code)),
		zap.String("message", diagnostic.Message),
	)

	r.emit(kind, i, bar, diagnostic)
}

// emit forwards an event to the listener. The first listener error is kept
// and stops the run after the current bar.
func (r *run) emit(kind types.EventKind, i int, bar types.Bar, payload any) {
	if r.events == nil || r.eventErr != nil {
		return
	}

	err := (*r.events)(types.Event{Kind: kind, Index: i, Time: bar.Time, Payload: payload})
	if err != nil {
		r.eventErr = errors.Wrap(errors.ErrCodeCallbackAborted, "event callback aborted the run", err)
	}
}

func (r *run) report(state engine.State) *engine.Report {
	return &engine.Report{
		RunID:         r.runID,
		EngineVersion: version.GetVersion(),
		Strategy:      r.strategy.Name(),
		State:         state,
		Config:        r.config,
		Summary:       computeSummary(r.config, r.series, r.ledger, r.orders),
		Signals:       r.signals,
		Orders:        r.orders,
		Fills:         r.ledger.Fills(),
		Trades:        r.ledger.Trades(),
		Snapshots:     r.ledger.Snapshots(),
		Diagnostics:   r.diagnostics,
	}
}
