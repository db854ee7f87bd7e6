package components

import (
	"github.com/theirongolddev/paytrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar with key hints on the left
// and state on the right. flash replaces the hints when set.
func RenderStatusBar(width int, flash, right string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [p]ay  [r]enew  [x]delete  [?]help  [q]uit"
	if flash != "" {
		left = " " + lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Render(flash)
	}
	if right != "" {
		right += " "
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	gap := lipgloss.NewStyle().Background(t.Surface).Width(padding).Render("")

	return style.Render(left + gap + right)
}
