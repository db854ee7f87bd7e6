package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"45000", "$45,000"},
		{"1234.5", "$1,234.50"},
		{"89990.999", "$89,991"},
		{"-12.25", "-$12.25"},
	}
	for _, tt := range tests {
		got := FormatAmount(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	tests := map[int]string{0: "today", 1: "in 1d", 12: "in 12d", -5: "5d late"}
	for in, want := range tests {
		if got := FormatDays(in); got != want {
			t.Errorf("FormatDays(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := Plural(1, "day"); got != "1 day" {
		t.Errorf("Plural(1) = %q", got)
	}
	if got := Plural(4, "day"); got != "4 days" {
		t.Errorf("Plural(4) = %q", got)
	}
}

func TestRenderTableAlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers:    []string{"Name", "Amount"},
		Rows:       [][]string{{"💧 Agua", "$45,000"}, {"🏢 Administración", "$0"}},
		RightAlign: map[int]bool{1: true},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if got := lipgloss.Width(l); got != want {
			t.Errorf("line %d width = %d, want %d: %q", i, got, want, l)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(1, 0, 10); got != "" {
		t.Errorf("RenderProgressBar with zero total = %q, want empty", got)
	}
	if got := RenderProgressBar(3, 6, 10); !strings.Contains(got, "3/6") {
		t.Errorf("RenderProgressBar(3, 6) = %q, want 3/6 suffix", got)
	}
}
