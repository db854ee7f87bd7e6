package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/tui/components"
	"github.com/theirongolddev/paytrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldThreshold = iota
	settingsFieldTheme
	settingsFieldNotifyMode
	settingsFieldNotifyHour
	settingsFieldRollover
	settingsFieldSyncRepo
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldThreshold:
		ti.Placeholder = "4"
		ti.SetValue(strconv.Itoa(cfg.Alerts.ThresholdDays))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.General.Theme)
	case settingsFieldNotifyMode:
		ti.Placeholder = config.ModeHourly + " or " + config.ModeDaily
		ti.SetValue(cfg.Notify.Mode)
	case settingsFieldNotifyHour:
		ti.Placeholder = "9 (0-23)"
		ti.SetValue(strconv.Itoa(cfg.Notify.Hour))
	case settingsFieldRollover:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(cfg.Schedule.LegacyRollover))
	case settingsFieldSyncRepo:
		ti.Placeholder = "owner/repo (empty disables sync)"
		if cfg.Sync.Owner != "" {
			ti.SetValue(cfg.Sync.Owner + "/" + cfg.Sync.Repo)
		}
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field, persists the config and
// applies the change to the running dashboard.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldThreshold:
		if err := validateThreshold(val); err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.Alerts.ThresholdDays, _ = strconv.Atoi(val)
	case settingsFieldTheme:
		if !theme.Known(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.General.Theme = val
	case settingsFieldNotifyMode:
		cfg.Notify.Mode = strings.ToLower(val)
	case settingsFieldNotifyHour:
		if err := validateHour(val); err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.Notify.Hour, _ = strconv.Atoi(val)
	case settingsFieldRollover:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("expected true or false, got %q", val)
			return
		}
		cfg.Schedule.LegacyRollover = b
	case settingsFieldSyncRepo:
		owner, repo, err := splitRepo(val)
		if err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.Sync.Owner, cfg.Sync.Repo = owner, repo
	}

	if err := cfg.Validate(); err != nil {
		a.settings.saveErr = err
		return
	}
	if a.settings.saveErr = config.Save(cfg); a.settings.saveErr != nil {
		return
	}

	theme.SetActive(cfg.General.Theme)
	a.opts.Threshold = cfg.Alerts.ThresholdDays
	a.opts.Projector.LegacyRollover = cfg.Schedule.LegacyRollover
	a.recompute()
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	syncRepo := "(local only)"
	if cfg.SyncEnabled() {
		syncRepo = cfg.Sync.Owner + "/" + cfg.Sync.Repo + ":" + cfg.Sync.Path
	} else if cfg.Sync.Owner != "" {
		syncRepo = cfg.Sync.Owner + "/" + cfg.Sync.Repo + " (no token)"
	}

	fields := []struct{ label, value string }{
		{"Urgent within", fmt.Sprintf("%d days", cfg.Alerts.ThresholdDays)},
		{"Theme", cfg.General.Theme},
		{"Reminders", cfg.Notify.Mode},
		{"Daily hour", fmt.Sprintf("%02d:00", cfg.Notify.Hour)},
		{"Legacy rollover", strconv.FormatBool(cfg.Schedule.LegacyRollover)},
		{"Sync", syncRepo},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if padLen := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Bills tracked:   ") + valueStyle.Render(strconv.Itoa(len(a.obligations))) + "\n")
	infoBody.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(config.DBPath(cfg)) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
