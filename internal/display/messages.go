package display

import (
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// EventMsg carries one event of a live run.
type EventMsg struct {
	Event types.Event
}

// RunStartedMsg signals that the engine began processing bars.
type RunStartedMsg struct {
	Strategy  string
	TotalBars int
}

// RunFinishedMsg carries the final report of a live run.
type RunFinishedMsg struct {
	Report *engine.Report
	Err    error
}
