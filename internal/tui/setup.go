package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues backs the setup form. Numbers are kept as strings because
// huh inputs bind to strings.
type SetupValues struct {
	Theme      string
	Threshold  string
	NotifyMode string
	NotifyHour string
	SyncRepo   string // "owner/repo", empty disables sync
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	vals := &SetupValues{
		Theme:      cfg.General.Theme,
		Threshold:  strconv.Itoa(cfg.Alerts.ThresholdDays),
		NotifyMode: cfg.Notify.Mode,
		NotifyHour: strconv.Itoa(cfg.Notify.Hour),
	}
	if cfg.Sync.Owner != "" && cfg.Sync.Repo != "" {
		vals.SyncRepo = cfg.Sync.Owner + "/" + cfg.Sync.Repo
	}
	if !theme.Known(vals.Theme) {
		vals.Theme = theme.FlexokiDark.Name
	}
	return vals
}

func validateThreshold(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of days, 0 or more")
	}
	return nil
}

func validateHour(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 23 {
		return fmt.Errorf("enter an hour between 0 and 23")
	}
	return nil
}

// splitRepo parses "owner/repo". Empty input is valid and means no sync.
func splitRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", nil
	}
	owner, repo, ok := strings.Cut(s, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("expected owner/repo, got %q", s)
	}
	return owner, repo, nil
}

// NewSetupForm builds the first-run wizard. The same form backs the
// `paytrack setup` command and the dashboard's first launch.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to paytrack").
				Description("Track recurring household bills and get reminded before they are due."),
			huh.NewInput().
				Title("Urgency threshold (days)").
				Description("Unpaid bills due within this many days are urgent and trigger reminders.").
				Value(&vals.Threshold).
				Validate(validateThreshold),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reminder schedule").
				Options(
					huh.NewOption("Every hour", config.ModeHourly),
					huh.NewOption("Once a day", config.ModeDaily),
				).
				Value(&vals.NotifyMode),
			huh.NewInput().
				Title("Daily reminder hour (0-23)").
				Description("Only used with the daily schedule.").
				Value(&vals.NotifyHour).
				Validate(validateHour),
			huh.NewInput().
				Title("Sync repository").
				Description("GitHub owner/repo holding data.json. Leave empty to stay local.").
				Placeholder("owner/repo").
				Value(&vals.SyncRepo).
				Validate(func(s string) error {
					_, _, err := splitRepo(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())
}

// ApplySetup copies completed form values into cfg.
func ApplySetup(cfg *config.Config, vals SetupValues) error {
	threshold, err := strconv.Atoi(strings.TrimSpace(vals.Threshold))
	if err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(vals.NotifyHour))
	if err != nil {
		return fmt.Errorf("hour: %w", err)
	}
	owner, repo, err := splitRepo(vals.SyncRepo)
	if err != nil {
		return err
	}

	cfg.General.Theme = vals.Theme
	cfg.Alerts.ThresholdDays = threshold
	cfg.Notify.Mode = vals.NotifyMode
	cfg.Notify.Hour = hour
	cfg.Sync.Owner = owner
	cfg.Sync.Repo = repo
	return cfg.Validate()
}
