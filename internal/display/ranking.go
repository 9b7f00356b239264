package display

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/meshetar/internal/sweep"
)

// RankingView renders up to top ranked sweep results. top <= 0 shows all.
func RankingView(ranked []sweep.Result, top int) string {
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "Parameters", "Strategy", "Return", "Max DD", "Sharpe", "Trades", "Win rate")

	for i, result := range ranked {
		s := result.Report.Summary

		t.Row(
			fmt.Sprintf("%d", i+1),
			result.Job.Name,
			result.Report.Strategy,
			FormatPercent(s.TotalReturn),
			fmt.Sprintf("%.2f%%", s.MaxDrawdown*100),
			FormatOptional(s.Sharpe),
			fmt.Sprintf("%d", s.TradeResult.NumberOfTrades),
			fmt.Sprintf("%.1f%%", s.TradeResult.WinRate*100),
		)
	}

	return t.Render()
}
