// Package tui provides the interactive Bubble Tea dashboard for paytrack.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/paytrack/internal/alert"
	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/schedule"
	"github.com/theirongolddev/paytrack/internal/tui/components"
	"github.com/theirongolddev/paytrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Repo is the obligation storage the dashboard reads and mutates.
type Repo interface {
	List(ctx context.Context) ([]model.Obligation, error)
	Update(ctx context.Context, id string, patch model.Patch) (model.Obligation, error)
	Delete(ctx context.Context, id string) error
}

// Options configures the dashboard.
type Options struct {
	Repo      Repo
	Projector schedule.Projector
	Threshold int
	Clock     schedule.Clock

	// AfterWrite runs after every successful mutation, e.g. a sync push.
	// Its error is shown but does not undo the local change.
	AfterWrite func(ctx context.Context) error

	// NeedSetup opens the first-run setup form once data has loaded.
	NeedSetup bool
}

type obligationsLoadedMsg struct {
	obligations []model.Obligation
	err         error
}

type mutationMsg struct {
	verb    string
	name    string
	err     error
	syncErr error
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	obligations []model.Obligation
	evals       []alert.Evaluation // all, sorted by urgency
	visible     []alert.Evaluation // current tab
	evalErr     error              // obligations skipped by the projector
	today       time.Time
	loaded      bool
	loadErr     error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     string

	list     listState
	settings settingsState

	// Pending confirmations and forms
	confirmDelete bool
	payForm       *huh.Form
	payVals       *payValues
	payID         string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 160

	minContentHeight = 5 // minimum content area height
	tickInterval     = time.Minute
	opTimeout        = 30 * time.Second
)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Clock == nil {
		opts.Clock = schedule.SystemClock{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		needSetup: opts.NeedSetup,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadCmd(),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a App) loadCmd() tea.Cmd {
	repo := a.opts.Repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		obs, err := repo.List(ctx)
		return obligationsLoadedMsg{obligations: obs, err: err}
	}
}

// recompute re-evaluates every obligation against today and refreshes the
// current tab's view of them.
func (a *App) recompute() {
	today, err := schedule.Today(a.opts.Clock)
	if err != nil {
		a.evalErr = err
		return
	}
	a.today = today

	a.evals, a.evalErr = alert.Evaluate(a.opts.Projector, a.obligations, today, a.opts.Threshold)
	alert.SortByUrgency(a.evals)
	a.refilter()
}

func (a *App) refilter() {
	if a.activeTab < components.SettingsTab {
		a.visible = alert.Filter(a.evals, alert.Tab(a.activeTab))
	}
	// Clamp the cursor to the new list bounds
	if a.list.cursor >= len(a.visible) {
		a.list.cursor = len(a.visible) - 1
	}
	if a.list.cursor < 0 {
		a.list.cursor = 0
	}
}

func (a *App) setTab(tab int) {
	if tab == a.activeTab {
		return
	}
	a.activeTab = tab
	a.confirmDelete = false
	a.list = listState{}
	a.refilter()
}

func (a App) selected() (alert.Evaluation, bool) {
	if a.activeTab >= components.SettingsTab || a.list.cursor >= len(a.visible) {
		return alert.Evaluation{}, false
	}
	return a.visible[a.list.cursor], true
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.payForm != nil {
			a.payForm = a.payForm.WithWidth(min(msg.Width, 60))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.payForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		return a.updateKey(msg)

	case obligationsLoadedMsg:
		a.loaded = true
		a.loadErr = msg.err
		if msg.err == nil {
			a.obligations = msg.obligations
		}
		a.recompute()

		// Activate first-run setup after data loads
		if a.needSetup && a.setupForm == nil {
			a.setupVals = SetupValuesFrom(loadConfigOrDefault())
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case mutationMsg:
		switch {
		case msg.err != nil:
			a.flash = fmt.Sprintf("%s failed: %s", msg.verb, msg.err)
		case msg.syncErr != nil:
			a.flash = fmt.Sprintf("%s %s (sync failed: %s)", msg.verb, msg.name, msg.syncErr)
		default:
			a.flash = fmt.Sprintf("%s %s", msg.verb, msg.name)
		}
		return a, a.loadCmd()

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		// Re-evaluate so day counts roll over at midnight
		if a.loaded {
			a.recompute()
		}
		return a, tickCmd()
	}

	// Forward unhandled messages to active forms (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.payForm != nil {
		return a.updatePayForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Forms intercept all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.payForm != nil {
		if key == "esc" {
			a.payForm, a.payVals, a.payID = nil, nil, ""
			a.flash = "Payment cancelled"
			return a, nil
		}
		return a.updatePayForm(msg)
	}

	// Settings tab text input
	if a.activeTab == components.SettingsTab && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if a.confirmDelete {
		a.confirmDelete = false
		if key == "y" || key == "Y" {
			if sel, ok := a.selected(); ok {
				return a, a.deleteCmd(sel.Obligation)
			}
		}
		a.flash = "Delete cancelled"
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.flash = ""

	if a.activeTab < components.SettingsTab {
		if m, cmd, handled := a.updateListKey(key); handled {
			return m, cmd
		}
	} else if m, cmd, handled := a.updateSettingsKey(key); handled {
		return m, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "R":
		a.flash = "Reloading..."
		return a, a.loadCmd()
	case "left", "h":
		a.setTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right", "l", "tab":
		a.setTab((a.activeTab + 1) % len(components.Tabs))
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.setTab(idx)
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab < components.SettingsTab && a.list.cursor > 0 {
			a.list.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab < components.SettingsTab && a.list.cursor < len(a.visible)-1 {
			a.list.cursor++
		}
	case tea.MouseButtonLeft:
		// Tab bar is the first line
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.setTab(tab)
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := loadConfigOrDefault()
		if err := ApplySetup(&cfg, *a.setupVals); err != nil {
			a.flash = "Setup: " + err.Error()
		} else if err := config.Save(cfg); err != nil {
			a.flash = "Could not save config: " + err.Error()
		} else {
			a.opts.Threshold = cfg.Alerts.ThresholdDays
			theme.SetActive(cfg.General.Theme)
			a.flash = "Saved to " + config.ConfigPath()
		}
		a.needSetup = false
		a.setupForm = nil
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) runMutation(verb, name string, fn func(ctx context.Context) error) tea.Cmd {
	after := a.opts.AfterWrite
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return mutationMsg{verb: verb, name: name, err: err}
		}
		var syncErr error
		if after != nil {
			syncErr = after(ctx)
		}
		return mutationMsg{verb: verb, name: name, syncErr: syncErr}
	}
}

func (a App) patchCmd(verb string, o model.Obligation, patch model.Patch) tea.Cmd {
	repo := a.opts.Repo
	return a.runMutation(verb, o.Name(), func(ctx context.Context) error {
		_, err := repo.Update(ctx, o.ID, patch)
		return err
	})
}

func (a App) deleteCmd(o model.Obligation) tea.Cmd {
	repo := a.opts.Repo
	return a.runMutation("Deleted", o.Name(), func(ctx context.Context) error {
		return repo.Delete(ctx, o.ID)
	})
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  paytrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ paytrack"))
	b.WriteString(subtitleStyle.Render(" · Household bills"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading obligations..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3 s", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"g G", "First / Last"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"p", "Pay selected bill"},
			{"r", "Renew for next cycle"},
			{"x", "Delete (asks y/n)"},
			{"R", "Reload from disk"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusFlash(), a.statusRight())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.payForm != nil:
		content = a.renderPayForm(cw)
	case a.activeTab == components.SettingsTab:
		content = a.renderSettingsTab(cw)
	default:
		content = a.renderObligationsTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusFlash() string {
	switch {
	case a.confirmDelete:
		if sel, ok := a.selected(); ok {
			return fmt.Sprintf("Delete %s? [y/N]", sel.Obligation.Name())
		}
	case a.loadErr != nil:
		return "Load failed: " + a.loadErr.Error()
	case a.flash != "":
		return a.flash
	case a.evalErr != nil:
		return fmt.Sprintf("%s skipped (invalid)", cli.Plural(countJoined(a.evalErr), "bill"))
	}
	return ""
}

func (a App) statusRight() string {
	if a.today.IsZero() {
		return ""
	}
	return a.today.Format("Mon Jan 2")
}

// countJoined counts the errors inside an errors.Join result.
func countJoined(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
// This ensures gaps between cards and empty lines have proper background fill.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
