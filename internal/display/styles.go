package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/moznion/go-optional"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// LabelStyle for summary field names.
	LabelStyle = lipgloss.NewStyle().Faint(true).Width(16)

	// PanelStyle frames the summary and the equity curve.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// FormatPercent formats a fraction as a signed percentage with a direction marker.
func FormatPercent(v float64) string {
	s := fmt.Sprintf("%+.2f%%", v*100)

	switch {
	case v > 0:
		return s + " ▲"
	case v < 0:
		return s + " ▼"
	}

	return s
}

// FormatOptional formats an undefined value as "n/a".
func FormatOptional(v optional.Option[float64]) string {
	if v.IsNone() {
		return "n/a"
	}

	return fmt.Sprintf("%.4f", v.Unwrap())
}

// Sparkline renders values as block characters, resampled to at most width
// columns by keeping the last value of each bucket.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	if len(values) > width {
		sampled := make([]float64, width)
		for i := range width {
			sampled[i] = values[(i+1)*len(values)/width-1]
		}

		values = sampled
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder

	for _, v := range values {
		level := 0
		if hi > lo {
			level = int((v - lo) / (hi - lo) * float64(len(sparkLevels)-1))
		}

		b.WriteRune(sparkLevels[level])
	}

	return b.String()
}
