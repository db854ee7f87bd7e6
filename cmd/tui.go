package cmd

import (
	"fmt"

	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/tui"
	"github.com/theirongolddev/paytrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	needSetup := !config.Exists()
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	theme.SetActive(s.cfg.General.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Repo:       s.st,
		Projector:  projector(s.cfg),
		Threshold:  s.cfg.Alerts.ThresholdDays,
		Clock:      s.clock,
		AfterWrite: afterWrite(s.cfg, s.st),
		NeedSetup:  needSetup,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
