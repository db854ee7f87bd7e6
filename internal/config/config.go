// Package config loads and saves paytrack's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Notification modes.
const (
	ModeHourly = "hourly"
	ModeDaily  = "daily"
)

// Config holds all paytrack configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Alerts   AlertsConfig   `toml:"alerts"`
	Schedule ScheduleConfig `toml:"schedule"`
	Notify   NotifyConfig   `toml:"notify"`
	Sync     SyncConfig     `toml:"sync"`
	Log      LogConfig      `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
	Theme  string `toml:"theme"`
}

// AlertsConfig holds the urgency threshold.
type AlertsConfig struct {
	ThresholdDays int `toml:"threshold_days"`
}

// ScheduleConfig tunes due-date projection.
type ScheduleConfig struct {
	// LegacyRollover pushes overdue unpaid obligations to the next cycle
	// instead of reporting them overdue.
	LegacyRollover bool `toml:"legacy_rollover"`
}

// NotifyConfig controls reminder delivery.
type NotifyConfig struct {
	Mode    string   `toml:"mode"`
	Hour    int      `toml:"hour"`
	Command string   `toml:"command,omitempty"`
	Args    []string `toml:"args,omitempty"`
}

// SyncConfig locates the shared document on GitHub.
type SyncConfig struct {
	Owner   string `toml:"owner,omitempty"`
	Repo    string `toml:"repo,omitempty"`
	Path    string `toml:"path,omitempty"`
	Branch  string `toml:"branch,omitempty"`
	Token   string `toml:"token,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Theme: "flexoki-dark",
		},
		Alerts: AlertsConfig{
			ThresholdDays: 4,
		},
		Notify: NotifyConfig{
			Mode: ModeHourly,
			Hour: 9,
		},
		Sync: SyncConfig{
			Path:    "data.json",
			BaseURL: "https://api.github.com",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate rejects settings no command can work with.
func (c Config) Validate() error {
	if c.Alerts.ThresholdDays < 0 {
		return fmt.Errorf("alerts.threshold_days must not be negative, got %d", c.Alerts.ThresholdDays)
	}
	if c.Notify.Hour < 0 || c.Notify.Hour > 23 {
		return fmt.Errorf("notify.hour must be between 0 and 23, got %d", c.Notify.Hour)
	}
	switch c.Notify.Mode {
	case ModeHourly, ModeDaily:
	default:
		return fmt.Errorf("notify.mode must be %q or %q, got %q", ModeHourly, ModeDaily, c.Notify.Mode)
	}
	return nil
}

// SyncEnabled reports whether a remote document is configured.
func (c Config) SyncEnabled() bool {
	return c.Sync.Owner != "" && c.Sync.Repo != "" && GetSyncToken(c) != ""
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "paytrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "paytrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "paytrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "paytrack")
}

// DBPath returns the configured database path, or the default one.
func DBPath(cfg Config) string {
	if p := strings.TrimSpace(cfg.General.DBPath); p != "" {
		if strings.HasPrefix(p, "~/") {
			home, _ := os.UserHomeDir()
			p = filepath.Join(home, p[2:])
		}
		return p
	}
	return filepath.Join(DataDir(), "paytrack.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", ConfigPath(), err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetSyncToken returns the GitHub token from env var or config, in that order.
func GetSyncToken(cfg Config) string {
	if key := os.Getenv("PAYTRACK_GITHUB_TOKEN"); key != "" {
		return key
	}
	return cfg.Sync.Token
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
