package engine

import (
	"context"

	"github.com/rxtech-lab/meshetar/internal/types"
)

// State is the lifecycle state of one backtest run.
type State string

const (
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StateCompleted    State = "completed"
	// StateFailed means the run stopped on an error. Data errors fail the run
	// before any bar is processed.
	StateFailed State = "failed"
	// StateCancelled means the context was cancelled between bars. The report
	// covers the bars processed so far.
	StateCancelled State = "cancelled"
)

// IsTerminal reports whether no further transition can happen.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Lifecycle callback types for a backtest run.
// All callbacks with error return can abort the run if they return an error.

// OnRunStartCallback is called once the series is validated, before the first bar.
// runID is a unique identifier for this run.
type OnRunStartCallback func(runID string, strategyName string, totalBars int) error

// OnRunEndCallback is called when the run reaches a terminal state (always called via defer).
// report is nil when the run failed before processing.
type OnRunEndCallback func(state State, report *Report, err error)

// OnStateChangeCallback is called on every state transition.
type OnStateChangeCallback func(from State, to State)

// OnProcessDataCallback is called after each bar is marked.
type OnProcessDataCallback func(current int, total int) error

// OnEventCallback receives the live event stream in bar order.
type OnEventCallback func(event types.Event) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnStateChange *OnStateChangeCallback
	OnProcessData *OnProcessDataCallback
	OnEvent       *OnEventCallback
}

type Engine interface {
	// Run replays series bar by bar and returns the report.
	// A cancelled context stops the run between bars with a partial report and
	// an error carrying ErrCodeCanceled.
	// Use LifecycleCallbacks to receive notifications at different phases of the run.
	Run(ctx context.Context, series types.Series, callbacks LifecycleCallbacks) (*Report, error)
	// State returns the state of the last or current run.
	State() State
	// GetConfigSchema returns the JSON schema of the strategy configuration.
	GetConfigSchema() (string, error)
}
