package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// A broken file is replaced by what the user enters.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	fmt.Println()
	fmt.Println("  Welcome to paytrack!")
	fmt.Println()

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return err
	}
	if err := tui.ApplySetup(&cfg, *vals); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	if cfg.Sync.Owner != "" && config.GetSyncToken(cfg) == "" {
		fmt.Println("  Set PAYTRACK_GITHUB_TOKEN (or [sync] token) to enable sync.")
	}
	fmt.Println("  Run `paytrack setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
