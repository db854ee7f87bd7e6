package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/paytrack/internal/alert"
	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/schedule"
	"github.com/theirongolddev/paytrack/internal/tui/components"
	"github.com/theirongolddev/paytrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// listState holds the obligation list cursor.
type listState struct {
	cursor int
	offset int // scroll offset for the list
}

// payValues backs the pay form. It lives behind a pointer because huh
// binds to field addresses and App is copied on every update.
type payValues struct {
	Amount string
}

func (a App) updateListKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.list.cursor < len(a.visible)-1 {
			a.list.cursor++
		}
	case "k", "up":
		if a.list.cursor > 0 {
			a.list.cursor--
		}
	case "g", "home":
		a.list.cursor = 0
		a.list.offset = 0
	case "G", "end":
		a.list.cursor = max(len(a.visible)-1, 0)
	case "p":
		sel, ok := a.selected()
		if !ok {
			return a, nil, true
		}
		if sel.Obligation.Paid {
			a.flash = sel.Obligation.Name() + " is already paid"
			return a, nil, true
		}
		a.payID = sel.Obligation.ID
		a.payVals = &payValues{}
		if !sel.Obligation.Amount.IsZero() {
			a.payVals.Amount = sel.Obligation.Amount.String()
		}
		a.payForm = newPayForm(sel.Obligation, a.payVals)
		if a.width > 0 {
			a.payForm = a.payForm.WithWidth(min(a.width, 60))
		}
		return a, a.payForm.Init(), true
	case "r":
		sel, ok := a.selected()
		if !ok {
			return a, nil, true
		}
		if !sel.Obligation.Paid {
			a.flash = sel.Obligation.Name() + " is not paid yet"
			return a, nil, true
		}
		return a, a.patchCmd("Renewed", sel.Obligation, model.RenewPatch()), true
	case "x", "delete":
		if _, ok := a.selected(); ok {
			a.confirmDelete = true
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

// parsePayAmount reads the amount typed into the pay form. Empty means
// the obligation's own amount.
func parsePayAmount(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return d, nil
}

func newPayForm(o model.Obligation, vals *payValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount paid for "+o.Name()).
				Description("Leave empty to record "+cli.FormatAmount(o.Amount)).
				Value(&vals.Amount).
				Validate(func(s string) error {
					_, err := parsePayAmount(s, o.Amount)
					return err
				}),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithShowHelp(false)
}

func (a App) updatePayForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.payForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.payForm = f
	}

	switch a.payForm.State {
	case huh.StateCompleted:
		var target model.Obligation
		for _, o := range a.obligations {
			if o.ID == a.payID {
				target = o
				break
			}
		}
		a.payForm = nil
		if target.ID == "" {
			a.flash = "Bill disappeared before payment was saved"
			return a, nil
		}
		amount, err := parsePayAmount(a.payVals.Amount, target.Amount)
		if err != nil {
			a.flash = err.Error()
			return a, nil
		}
		return a, a.patchCmd("Paid", target, model.PayPatch(a.opts.Clock.Now(), amount))
	case huh.StateAborted:
		a.payForm = nil
		a.flash = "Payment cancelled"
		return a, nil
	}
	return a, cmd
}

func (a App) renderPayForm(cw int) string {
	return components.ContentCard("Record payment", a.payForm.View(), min(cw, 64))
}

func (a App) renderObligationsTab(cw, h int) string {
	summary := a.renderSummary(cw)
	listH := max(h-lipgloss.Height(summary), minContentHeight)
	return summary + "\n" + a.renderObligationsSplit(cw, listH)
}

func (a App) renderSummary(cw int) string {
	t := theme.Active
	c := alert.Count(a.evals)

	outstanding := decimal.Zero
	for _, e := range a.evals {
		if !e.Obligation.Paid {
			outstanding = outstanding.Add(e.Obligation.Amount)
		}
	}
	unpaid := len(a.evals) - c.Paid

	overdue := components.Metric{Label: "Overdue", Value: cli.FormatNumber(int64(c.Overdue))}
	if c.Overdue > 0 {
		overdue.Color = t.Red
	}
	soon := components.Metric{
		Label: "Due soon",
		Value: cli.FormatNumber(int64(c.DueToday + c.Urgent)),
		Note:  fmt.Sprintf("%d today", c.DueToday),
	}
	if c.DueToday > 0 {
		soon.Color = t.Orange
	} else if c.Urgent > 0 {
		soon.Color = t.Yellow
	}

	metrics := []components.Metric{
		overdue,
		soon,
		{Label: "Outstanding", Value: cli.FormatAmount(outstanding), Note: cli.Plural(unpaid, "bill")},
		{Label: "Paid", Value: fmt.Sprintf("%d/%d", c.Paid, len(a.evals)), Color: t.Green},
	}
	if a.isCompactLayout() {
		metrics = metrics[:3]
	}
	return components.MetricCardRow(metrics, cw)
}

func (a App) renderObligationsSplit(cw, h int) string {
	t := theme.Active
	title := fmt.Sprintf("%s [%d]", components.Tabs[a.activeTab].Name, len(a.visible))

	if len(a.visible) == 0 {
		empty := "No bills here"
		if len(a.evals) == 0 {
			empty = "No bills yet. Add one with `paytrack add` or run `paytrack seed`."
		}
		return components.ContentCard(title, lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(empty), cw)
	}

	leftW := max(cw*2/5, 36)
	if a.isCompactLayout() {
		leftW = cw
	}
	leftCard := components.ContentCard(title, a.renderList(leftW, h), leftW)
	if a.isCompactLayout() {
		return leftCard
	}

	sel, _ := a.selected()
	rightW := cw - leftW
	rightCard := components.ContentCard(sel.Obligation.Label(), a.renderDetailBody(sel, rightW), rightW)
	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderList(w, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	visible := max(h-4, 3) // card border (2) + title (1) + cycle bar (1)
	offset := a.list.offset
	if a.list.cursor < offset {
		offset = a.list.cursor
	}
	if a.list.cursor >= offset+visible {
		offset = a.list.cursor - visible + 1
	}
	end := min(offset+visible, len(a.visible))

	const whenW, amountW = 10, 11
	nameW := max(inner-whenW-amountW-2, 8)

	var b strings.Builder
	for i := offset; i < end; i++ {
		e := a.visible[i]
		bg := t.Surface
		if i == a.list.cursor {
			bg = t.SurfaceBright
		}
		nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		whenStyle := lipgloss.NewStyle().Foreground(t.StatusColor(e.Result.Status.String())).Background(bg)
		amountStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
		if i == a.list.cursor {
			nameStyle = nameStyle.Bold(true)
		}

		when := cli.FormatDays(e.Days())
		if e.Obligation.Paid {
			when = "paid"
		}
		b.WriteString(nameStyle.Width(nameW).MaxWidth(nameW).Render(cli.Truncate(e.Obligation.Label(), nameW)))
		b.WriteString(whenStyle.Render(fmt.Sprintf(" %*s", whenW, when)))
		b.WriteString(amountStyle.Render(fmt.Sprintf(" %*s", amountW, cli.FormatAmount(e.Obligation.Amount))))
		b.WriteString("\n")
	}

	c := alert.Count(a.evals)
	b.WriteString(components.CycleBar("Paid", c.Paid, len(a.evals), 5, max(inner-14, 8)))
	return b.String()
}

// renderDetailBody renders the selected obligation's full state.
func (a App) renderDetailBody(e alert.Evaluation, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	o := e.Obligation

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	statusStyle := lipgloss.NewStyle().Foreground(t.StatusColor(e.Result.Status.String())).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(statusStyle.Render(e.Result.Text))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")
	b.WriteString(row("Amount", cli.FormatAmount(o.Amount)))
	b.WriteString(row("Due", cli.FormatDate(e.Projection.Due)))
	b.WriteString(row("Schedule", o.Period.Describe(o.DueDay)))
	if o.Paid {
		if o.PaidDate != nil {
			b.WriteString(row("Paid on", cli.FormatDate(*o.PaidDate)))
		}
		if o.PaidAmount != nil {
			b.WriteString(row("Paid amount", cli.FormatAmount(*o.PaidAmount)))
		}
	}
	b.WriteString(row("ID", cli.ShortID(o.ID)))

	if !a.today.IsZero() {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("THIS MONTH"))
		b.WriteString("\n")
		b.WriteString(components.DueStrip(monthStrip(a.evals, a.today), a.today.Day(), t.Accent))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if o.Paid {
		b.WriteString(mutedStyle.Render("[r] renew  [x] delete  [j/k] navigate"))
	} else {
		b.WriteString(mutedStyle.Render("[p] pay  [x] delete  [j/k] navigate"))
	}
	return b.String()
}

// monthStrip sums unpaid amounts by due day for today's month. Bills with
// no amount still count as one so they show on the strip.
func monthStrip(evals []alert.Evaluation, today time.Time) []float64 {
	days := schedule.DaysIn(today.Year(), today.Month())
	out := make([]float64, days)
	for _, e := range evals {
		due := e.Projection.Due
		if e.Obligation.Paid || due.Year() != today.Year() || due.Month() != today.Month() {
			continue
		}
		v := e.Obligation.Amount.InexactFloat64()
		if v <= 0 {
			v = 1
		}
		out[due.Day()-1] += v
	}
	return out
}
