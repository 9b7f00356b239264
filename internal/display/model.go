// Package display renders backtest reports and live runs in the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/meshetar/internal/backtest/engine"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// Display states.
const (
	StateLive = iota
	StateSummary
)

// Tabs.
const (
	TabSignals = iota
	TabFills
)

// Model is the Bubble Tea model for reports and live runs.
type Model struct {
	state       int
	tab         int
	strategy    string
	totalBars   int
	processed   int
	signals     []types.Signal
	fills       []types.Fill
	diagnostics int
	equity      []float64
	report      *engine.Report
	signalTable table.Model
	fillTable   table.Model
	err         error
	width       int
}

// NewModel creates a model waiting for a live run.
func NewModel() Model {
	return Model{
		state:       StateLive,
		tab:         TabSignals,
		signals:     []types.Signal{},
		fills:       []types.Fill{},
		equity:      []float64{},
		signalTable: NewSignalTable(),
		fillTable:   NewFillTable(),
		width:       80,
	}
}

// NewReportModel creates a model showing a finished report.
func NewReportModel(report *engine.Report) Model {
	m := NewModel()
	m.finish(report, nil)

	return m
}

// Callbacks returns engine callbacks that forward the run to p.
func Callbacks(p *tea.Program) engine.LifecycleCallbacks {
	onStart := engine.OnRunStartCallback(func(_ string, strategyName string, totalBars int) error {
		p.Send(RunStartedMsg{Strategy: strategyName, TotalBars: totalBars})

		return nil
	})
	onEvent := engine.OnEventCallback(func(event types.Event) error {
		p.Send(EventMsg{Event: event})

		return nil
	})
	onEnd := engine.OnRunEndCallback(func(_ engine.State, report *engine.Report, err error) {
		p.Send(RunFinishedMsg{Report: report, Err: err})
	})

	return engine.LifecycleCallbacks{
		OnRunStart:    &onStart,
		OnRunEnd:      &onEnd,
		OnStateChange: nil,
		OnProcessData: nil,
		OnEvent:       &onEvent,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.tab = (m.tab + 1) % 2

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.signalTable.SetWidth(msg.Width)
		m.fillTable.SetWidth(msg.Width)
		m.signalTable.SetHeight(max(msg.Height-22, 3))
		m.fillTable.SetHeight(max(msg.Height-22, 3))

		return m, nil

	case RunStartedMsg:
		m.strategy = msg.Strategy
		m.totalBars = msg.TotalBars

		return m, nil

	case EventMsg:
		m.apply(msg.Event)

		return m, nil

	case RunFinishedMsg:
		m.finish(msg.Report, msg.Err)

		return m, nil
	}

	var cmd tea.Cmd
	if m.tab == TabFills {
		m.fillTable, cmd = m.fillTable.Update(msg)
	} else {
		m.signalTable, cmd = m.signalTable.Update(msg)
	}

	return m, cmd
}

func (m *Model) apply(event types.Event) {
	switch payload := event.Payload.(type) {
	case types.Signal:
		m.signals = append(m.signals, payload)
		m.signalTable.SetRows(SignalRows(m.signals))
	case types.Fill:
		m.fills = append(m.fills, payload)
		m.fillTable.SetRows(FillRows(m.fills))
	case types.LedgerSnapshot:
		m.processed = payload.Index + 1
		m.equity = append(m.equity, payload.Equity)
	case types.Diagnostic:
		m.diagnostics++
	}
}

func (m *Model) finish(report *engine.Report, err error) {
	m.state = StateSummary
	m.err = err

	if report == nil {
		return
	}

	m.report = report
	m.strategy = report.Strategy
	m.totalBars = report.Summary.Bars
	m.processed = len(report.Snapshots)
	m.signals = report.Signals
	m.fills = report.Fills
	m.diagnostics = len(report.Diagnostics)
	m.equity = report.Equity()
	m.signalTable.SetRows(SignalRows(m.signals))
	m.fillTable.SetRows(FillRows(m.fills))
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	title := "meshetar"
	if m.strategy != "" {
		title += " - " + m.strategy
	}

	s.WriteString(TitleStyle.Render(title))
	s.WriteString("\n\n")

	switch m.state {
	case StateLive:
		if m.totalBars == 0 {
			s.WriteString("Waiting for run...\n")
		} else {
			s.WriteString(fmt.Sprintf("Running bar %d/%d, signals %d, fills %d, diagnostics %d\n",
				m.processed, m.totalBars, len(m.signals), len(m.fills), m.diagnostics))
		}
	case StateSummary:
		if m.report != nil {
			s.WriteString(fmt.Sprintf("State: %s, diagnostics %d\n", m.report.State, m.diagnostics))
			s.WriteString(SummaryView(m.report.Summary))
			s.WriteString("\n")
		}
	}

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	if len(m.equity) > 0 {
		s.WriteString("Equity " + Sparkline(m.equity, max(m.width-8, 10)))
		s.WriteString("\n\n")
	}

	if m.tab == TabFills {
		s.WriteString(TitleStyle.Render("Fills") + HelpStyle.Render(" | Signals"))
		s.WriteString("\n")
		s.WriteString(m.fillTable.View())
	} else {
		s.WriteString(TitleStyle.Render("Signals") + HelpStyle.Render(" | Fills"))
		s.WriteString("\n")
		s.WriteString(m.signalTable.View())
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("tab: switch table | q: quit"))

	return s.String()
}
