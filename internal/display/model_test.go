package display

import (
	"bytes"
	"context"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/meshetar/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/meshetar/internal/config"
	"github.com/rxtech-lab/meshetar/internal/logger"
	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/rxtech-lab/meshetar/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *engine.Report {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &engine.Report{
		RunID:         "run-1",
		EngineVersion: "v0.4.0",
		Strategy:      "ma_crossover_2_3",
		State:         engine.StateCompleted,
		Config:        config.TestConfig(2, 3),
		Summary: types.Summary{
			Symbol:      "TEST",
			Bars:        3,
			FinalEquity: 1004,
			TotalReturn: 0.004,
			Sharpe:      optional.None[float64](),
		},
		Signals: []types.Signal{{Index: 2, Time: start, Kind: types.SignalKindLong, Strength: 0.5, Reason: "bullish crossover"}},
		Orders:  []types.Order{},
		Fills:   []types.Fill{{OrderID: "ord-000001", Symbol: "TEST", Side: types.PurchaseTypeBuy, Quantity: 1, Price: 12, Index: 2, Time: start}},
		Trades:  []types.ClosedTrade{},
		Snapshots: []types.LedgerSnapshot{
			{Index: 0, Equity: 1000}, {Index: 1, Equity: 1002}, {Index: 2, Equity: 1004},
		},
		Diagnostics: []types.Diagnostic{},
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		width    int
		expected string
	}{
		{name: "rising", values: []float64{1, 2, 3}, width: 10, expected: "▁▄█"},
		{name: "flat", values: []float64{5, 5}, width: 10, expected: "▁▁"},
		{name: "empty", values: nil, width: 10, expected: ""},
		{name: "zero width", values: []float64{1}, width: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sparkline(tt.values, tt.width))
		})
	}

	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}

	line := Sparkline(values, 10)
	assert.Equal(t, 10, utf8.RuneCountInString(line))
	assert.True(t, bytes.HasSuffix([]byte(line), []byte("█")))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "+10.00% ▲", FormatPercent(0.1))
	assert.Equal(t, "-5.00% ▼", FormatPercent(-0.05))
	assert.Equal(t, "+0.00%", FormatPercent(0))
	assert.Equal(t, "n/a", FormatOptional(optional.None[float64]()))
	assert.Equal(t, "1.2500", FormatOptional(optional.Some(1.25)))
}

func TestApplyEvents(t *testing.T) {
	var m tea.Model = NewModel()

	events := []types.Event{
		{Kind: types.EventKindSignal, Index: 0, Payload: types.Signal{Index: 0, Kind: types.SignalKindFlat}},
		{Kind: types.EventKindFill, Index: 0, Payload: types.Fill{OrderID: "ord-000001"}},
		{Kind: types.EventKindNoFill, Index: 0, Payload: types.Diagnostic{Index: 0}},
		{Kind: types.EventKindSnapshot, Index: 0, Payload: types.LedgerSnapshot{Index: 0, Equity: 1000}},
	}

	for _, event := range events {
		m, _ = m.Update(EventMsg{Event: event})
	}

	model := m.(Model)
	assert.Equal(t, StateLive, model.state)
	assert.Len(t, model.signals, 1)
	assert.Len(t, model.fills, 1)
	assert.Equal(t, 1, model.diagnostics)
	assert.Equal(t, []float64{1000}, model.equity)
	assert.Equal(t, 1, model.processed)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabFills, m.(Model).tab)
}

func TestTailKeepsLatestRows(t *testing.T) {
	signals := make([]types.Signal, maxRows+10)
	for i := range signals {
		signals[i].Index = i
	}

	rows := SignalRows(signals)
	require.Len(t, rows, maxRows)
	assert.Equal(t, "10", rows[0][0])
}

func TestReportView(t *testing.T) {
	tm := teatest.NewTestModel(t, NewReportModel(testReport()), teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("ma_crossover_2_3")) &&
			bytes.Contains(bts, []byte("Total return")) &&
			bytes.Contains(bts, []byte("bullish crossover"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("ord-000001"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestLiveView(t *testing.T) {
	tm := teatest.NewTestModel(t, NewModel(), teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Waiting for run"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(RunStartedMsg{Strategy: "ma_crossover_2_3", TotalBars: 5})
	tm.Send(EventMsg{Event: types.Event{Kind: types.EventKindSnapshot, Payload: types.LedgerSnapshot{Index: 0, Equity: 1000}}})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Running bar 1/5"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(RunFinishedMsg{Report: testReport(), Err: nil})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("State: completed"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestCallbacksForwardEngineRun(t *testing.T) {
	p := tea.NewProgram(NewModel(), tea.WithInput(nil), tea.WithOutput(&bytes.Buffer{}), tea.WithoutRenderer())

	done := make(chan tea.Model, 1)
	go func() {
		final, err := p.Run()
		assert.NoError(t, err)
		done <- final
	}()

	series := mocks.Series(10, 11, 12, 11, 10, 9, 10, 11)

	eng, err := engine_v1.NewBacktestEngineV1(config.TestConfig(2, 3), nil, nil, logger.NewNopLogger())
	require.NoError(t, err)

	report, err := eng.Run(context.Background(), series, Callbacks(p))
	require.NoError(t, err)

	p.Quit()

	final := (<-done).(Model)
	assert.Equal(t, StateSummary, final.state)
	assert.Equal(t, len(series.Bars), final.processed)
	assert.Equal(t, report.Strategy, final.strategy)
	assert.Equal(t, report.Equity(), final.equity)
}
