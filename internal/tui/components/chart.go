package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/paytrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values. Zero values render as
// a dim baseline dot so empty days stay visible.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var buf strings.Builder
	for _, v := range values {
		if v <= 0 {
			buf.WriteString(dim.Render("·"))
			continue
		}
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteString(style.Render(string(sparkBlocks[idx])))
	}
	return buf.String()
}

// DueStrip renders a one-month strip of amounts due per day of month, with a
// caret under today. amounts[0] is day 1. today is 1-based; 0 hides the caret.
func DueStrip(amounts []float64, today int, color lipgloss.Color) string {
	if len(amounts) == 0 {
		return ""
	}
	t := theme.Active

	caretStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	line := Sparkline(amounts, color)

	var caret string
	if today >= 1 && today <= len(amounts) {
		caret = axisStyle.Render(strings.Repeat(" ", today-1)) +
			caretStyle.Render("^") +
			axisStyle.Render(strings.Repeat(" ", len(amounts)-today))
	} else {
		caret = axisStyle.Render(strings.Repeat(" ", len(amounts)))
	}

	last := fmt.Sprintf("%d", len(amounts))
	gap := len(amounts) - 1 - len(last)
	axis := "1"
	if gap > 0 {
		axis += strings.Repeat(" ", gap) + last
	}

	return line + "\n" + caret + "\n" + axisStyle.Render(axis)
}
