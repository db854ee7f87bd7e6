package components

import (
	"fmt"

	"github.com/theirongolddev/paytrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForShare returns red/orange/yellow/green for the share of bills
// already settled this cycle. More paid is greener.
func ColorForShare(share float64) string {
	t := theme.Active
	switch {
	case share >= 0.9:
		return string(t.Green)
	case share >= 0.6:
		return string(t.Yellow)
	case share >= 0.3:
		return string(t.Orange)
	default:
		return string(t.Red)
	}
}

// CycleBar renders a labeled "done of total" bar, e.g. bills paid this cycle.
func CycleBar(label string, done, total, labelW, barWidth int) string {
	t := theme.Active

	share := 0.0
	if total > 0 {
		share = float64(done) / float64(total)
	}
	share = min(max(share, 0), 1)

	bar := progress.New(
		progress.WithSolidFill(ColorForShare(share)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForShare(share))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(share) +
		spaceStyle.Render(" ") +
		countStyle.Render(fmt.Sprintf("%d/%d", done, total))
}
