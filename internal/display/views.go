package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// maxRows bounds the rows kept in a table during a live run.
const maxRows = 500

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// NewSignalTable creates a table listing signals.
func NewSignalTable() table.Model {
	return newTable([]table.Column{
		{Title: "Bar", Width: 6},
		{Title: "Time", Width: 20},
		{Title: "Signal", Width: 8},
		{Title: "Strength", Width: 9},
		{Title: "Reason", Width: 28},
	})
}

// NewFillTable creates a table listing fills.
func NewFillTable() table.Model {
	return newTable([]table.Column{
		{Title: "Order", Width: 11},
		{Title: "Bar", Width: 6},
		{Title: "Side", Width: 5},
		{Title: "Quantity", Width: 12},
		{Title: "Price", Width: 12},
		{Title: "Fee", Width: 9},
	})
}

func tail[T any](items []T) []T {
	if len(items) > maxRows {
		return items[len(items)-maxRows:]
	}

	return items
}

// SignalRows converts the most recent signals into table rows.
func SignalRows(signals []types.Signal) []table.Row {
	signals = tail(signals)
	rows := make([]table.Row, 0, len(signals))

	for _, s := range signals {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", s.Index),
			s.Time.Format("2006-01-02 15:04:05"),
			string(s.Kind),
			fmt.Sprintf("%.3f", s.Strength),
			s.Reason,
		})
	}

	return rows
}

// FillRows converts the most recent fills into table rows.
func FillRows(fills []types.Fill) []table.Row {
	fills = tail(fills)
	rows := make([]table.Row, 0, len(fills))

	for _, f := range fills {
		rows = append(rows, table.Row{
			f.OrderID,
			fmt.Sprintf("%d", f.Index),
			string(f.Side),
			fmt.Sprintf("%.4f", f.Quantity),
			fmt.Sprintf("%.4f", f.Price),
			fmt.Sprintf("%.4f", f.Fee),
		})
	}

	return rows
}

// SummaryView renders the headline statistics of a run.
func SummaryView(summary types.Summary) string {
	line := func(label, value string) string {
		return LabelStyle.Render(label) + value
	}

	lines := []string{
		line("Symbol", summary.Symbol),
		line("Bars", fmt.Sprintf("%d", summary.Bars)),
		line("Final equity", fmt.Sprintf("%.2f", summary.FinalEquity)),
		line("Total return", FormatPercent(summary.TotalReturn)),
		line("Buy and hold", FormatPercent(summary.BuyAndHoldReturn)),
		line("Max drawdown", fmt.Sprintf("%.2f%%", summary.MaxDrawdown*100)),
		line("Sharpe", FormatOptional(summary.Sharpe)),
		line("Trades", fmt.Sprintf("%d (win rate %.1f%%)", summary.TradeResult.NumberOfTrades, summary.TradeResult.WinRate*100)),
		line("Orders", fmt.Sprintf("%d filled %d rejected %d", summary.Orders, summary.Fills, summary.Rejected)),
		line("Fees", fmt.Sprintf("%.4f", summary.TotalFees)),
	}

	return PanelStyle.Render(strings.Join(lines, "\n"))
}
