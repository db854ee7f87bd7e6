// Package cmd implements the paytrack CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/logging"
	"github.com/theirongolddev/paytrack/internal/notify"
	"github.com/theirongolddev/paytrack/internal/remote"
	"github.com/theirongolddev/paytrack/internal/schedule"
	"github.com/theirongolddev/paytrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagToday    string
	flagQuiet    bool
	flagLogLevel string
	flagNoSync   bool
)

var rootCmd = &cobra.Command{
	Use:   "paytrack",
	Short: "Household bill tracker with due-date reminders",
	Long:  "Track recurring household bills, see what is due, and get reminded before it is late.",
	RunE:  runList,

	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Evaluate as of this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagNoSync, "no-sync", false, "Skip pushing changes to the sync repository")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagQuiet {
		level = "warn"
	}
	_, err = logging.Setup(level, cfg.Log.Format)
	return err
}

// session is the shared state every data command starts from.
type session struct {
	cfg   config.Config
	st    *store.Store
	clock schedule.Clock
}

// openSession loads config, resolves the clock and opens the database.
// A broken config file is an error here, unlike the TUI which falls back to
// defaults so it can still start.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	clock, err := appClock()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, st: st, clock: clock}, nil
}

func (s *session) Close() { _ = s.st.Close() }

// today is midnight of the session clock's day.
func (s *session) today() (time.Time, error) {
	return schedule.Today(s.clock)
}

// openStore opens the obligation database named by --db or the config.
func openStore(cfg config.Config) (*store.Store, error) {
	path := flagDB
	if path == "" {
		path = config.DBPath(cfg)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return st, nil
}

// appClock honors --today so every command can be replayed on a fixed date.
func appClock() (schedule.Clock, error) {
	if flagToday == "" {
		return schedule.SystemClock{}, nil
	}
	day, err := schedule.ParseDay(flagToday, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--today: %w", err)
	}
	return schedule.FixedClock{T: day}, nil
}

func projector(cfg config.Config) schedule.Projector {
	return schedule.Projector{LegacyRollover: cfg.Schedule.LegacyRollover}
}

// newSyncer wires the GitHub document to the local store.
func newSyncer(cfg config.Config, st *store.Store) (*remote.Syncer, *remote.Client, error) {
	client := remote.NewClient(remote.Options{
		Owner:   cfg.Sync.Owner,
		Repo:    cfg.Sync.Repo,
		Path:    cfg.Sync.Path,
		Branch:  cfg.Sync.Branch,
		Token:   config.GetSyncToken(cfg),
		BaseURL: cfg.Sync.BaseURL,
	})
	if client == nil {
		return nil, nil, errors.New("sync is not configured: set [sync] owner and repo, and a token or PAYTRACK_GITHUB_TOKEN")
	}
	return &remote.Syncer{Remote: client, Local: st}, client, nil
}

// afterWrite returns the push run after local mutations, or nil when sync
// is off. A failed push leaves the local change in place.
func afterWrite(cfg config.Config, st *store.Store) func(ctx context.Context) error {
	if flagNoSync || !cfg.SyncEnabled() {
		return nil
	}
	syncer, _, err := newSyncer(cfg, st)
	if err != nil {
		return nil
	}
	return syncer.Push
}

// pushAfterWrite runs afterWrite and reports failures without failing the
// command: the local database is the source of truth.
func pushAfterWrite(ctx context.Context, cfg config.Config, st *store.Store) {
	push := afterWrite(cfg, st)
	if push == nil {
		return
	}
	if err := push(ctx); err != nil {
		logging.LogError(slog.Default(), err, "sync push failed; local change kept")
		return
	}
	slog.Debug("pushed changes", "repo", cfg.Sync.Owner+"/"+cfg.Sync.Repo)
}

// buildSink assembles reminder delivery: always a log line, plus the
// configured desktop notifier command.
func buildSink(cfg config.Config, logger *slog.Logger) notify.Sink {
	sinks := notify.Multi{notify.LogSink{Logger: logger}}
	if cfg.Notify.Command != "" {
		sinks = append(sinks, notify.ExecSink{Command: cfg.Notify.Command, Args: cfg.Notify.Args})
	}
	return sinks
}

// parseAmount accepts "45000", "45,000" and "$45,000.50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative: %s", s)
	}
	return d, nil
}
