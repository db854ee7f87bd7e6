package cmd

import (
	"fmt"

	"github.com/theirongolddev/paytrack/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database: %s\n", config.DBPath(cfg))
	fmt.Printf("    Theme:    %s\n", cfg.General.Theme)
	fmt.Println()

	fmt.Println("  [Alerts]")
	fmt.Printf("    Urgent within: %d days\n", cfg.Alerts.ThresholdDays)
	fmt.Println()

	fmt.Println("  [Schedule]")
	fmt.Printf("    Legacy rollover: %v\n", cfg.Schedule.LegacyRollover)
	fmt.Println()

	fmt.Println("  [Notify]")
	fmt.Printf("    Mode: %s\n", cfg.Notify.Mode)
	if cfg.Notify.Mode == config.ModeDaily {
		fmt.Printf("    Hour: %02d:00\n", cfg.Notify.Hour)
	}
	if cfg.Notify.Command != "" {
		fmt.Printf("    Command: %s %v\n", cfg.Notify.Command, cfg.Notify.Args)
	} else {
		fmt.Println("    Command: none (log only)")
	}
	fmt.Println()

	fmt.Println("  [Sync]")
	if cfg.Sync.Owner == "" {
		fmt.Println("    Repository: not configured")
	} else {
		fmt.Printf("    Repository: %s/%s:%s\n", cfg.Sync.Owner, cfg.Sync.Repo, cfg.Sync.Path)
		if cfg.Sync.Branch != "" {
			fmt.Printf("    Branch:     %s\n", cfg.Sync.Branch)
		}
	}
	if token := config.GetSyncToken(cfg); token != "" {
		fmt.Printf("    Token:      %s\n", maskToken(token))
	} else {
		fmt.Println("    Token:      not configured")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `paytrack setup` to reconfigure.")
	return nil
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
