package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/paytrack/internal/tui/theme"
)

func TestColorForShare(t *testing.T) {
	theme.SetActive("flexoki-dark")
	tests := []struct {
		share float64
		want  lipgloss.Color
	}{
		{0, theme.Active.Red},
		{0.5, theme.Active.Orange},
		{0.75, theme.Active.Yellow},
		{1, theme.Active.Green},
	}
	for _, tt := range tests {
		if got := ColorForShare(tt.share); got != string(tt.want) {
			t.Errorf("ColorForShare(%v) = %q, want %q", tt.share, got, tt.want)
		}
	}
}

func TestCycleBarShowsCount(t *testing.T) {
	theme.SetActive("flexoki-dark")
	out := CycleBar("Paid", 3, 6, 6, 20)
	if !strings.Contains(out, "3/6") {
		t.Errorf("CycleBar missing count: %q", out)
	}
	// Empty cycles must not divide by zero.
	if out := CycleBar("Paid", 0, 0, 6, 20); !strings.Contains(out, "0/0") {
		t.Errorf("CycleBar(0, 0) = %q", out)
	}
}

func TestDueStripCaret(t *testing.T) {
	theme.SetActive("terminal")
	amounts := make([]float64, 31)
	amounts[21] = 100
	out := DueStrip(amounts, 22, theme.Active.Accent)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("DueStrip lines = %d, want 3", len(lines))
	}
	for i, line := range lines[:2] {
		if w := lipgloss.Width(line); w != 31 {
			t.Errorf("line %d width = %d, want 31", i, w)
		}
	}
}
