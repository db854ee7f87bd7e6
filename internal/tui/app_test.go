package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/paytrack/internal/config"
	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/schedule"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	obligations []model.Obligation
	deleted     []string
	patched     map[string]model.Patch
}

func (r *fakeRepo) List(context.Context) ([]model.Obligation, error) {
	return append([]model.Obligation(nil), r.obligations...), nil
}

func (r *fakeRepo) Update(_ context.Context, id string, patch model.Patch) (model.Obligation, error) {
	if r.patched == nil {
		r.patched = make(map[string]model.Patch)
	}
	for i, o := range r.obligations {
		if o.ID == id {
			r.patched[id] = patch
			r.obligations[i] = patch.Apply(o)
			return r.obligations[i], nil
		}
	}
	return model.Obligation{}, errors.New("not found")
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func fixtureRepo() *fakeRepo {
	paidOn := time.Date(2025, 1, 18, 0, 0, 0, 0, time.Local)
	paidAmount := decimal.NewFromInt(85000)
	return &fakeRepo{obligations: []model.Obligation{
		{ID: "luz-001", Category: model.MustBuiltin(model.KindLuz), Amount: decimal.NewFromInt(85000), DueDay: 18, Period: model.Monthly,
			Paid: true, PaidDate: &paidOn, PaidAmount: &paidAmount},
		{ID: "agua-001", Category: model.MustBuiltin(model.KindAgua), Amount: decimal.NewFromInt(45000), DueDay: 25, Period: model.Bimonthly},
		{ID: "directv-001", Category: model.MustBuiltin(model.KindDirecTV), DueDay: 22, Period: model.Monthly},
		{ID: "admin-001", Category: model.MustBuiltin(model.KindAdmin), Amount: decimal.NewFromInt(350000), DueDay: 10, Period: model.Monthly},
	}}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedApp returns an App that has processed its initial load on 2025-01-22.
func loadedApp(t *testing.T, repo *fakeRepo, after func(context.Context) error) App {
	t.Helper()
	a := NewApp(Options{
		Repo:       repo,
		Threshold:  4,
		Clock:      schedule.FixedClock{T: time.Date(2025, 1, 22, 10, 0, 0, 0, time.Local)},
		AfterWrite: after,
	})
	m, _ := a.Update(a.loadCmd()())
	m, _ = m.(App).Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m.(App)
}

func visibleIDs(a App) []string {
	ids := make([]string, len(a.visible))
	for i, e := range a.visible {
		ids[i] = e.Obligation.ID
	}
	return ids
}

func TestLoadSortsPendingByUrgency(t *testing.T) {
	a := loadedApp(t, fixtureRepo(), nil)

	got := strings.Join(visibleIDs(a), ",")
	if want := "admin-001,directv-001,agua-001"; got != want {
		t.Fatalf("pending = %s, want %s", got, want)
	}

	m, _ := a.Update(keyMsg("2"))
	a = m.(App)
	if got := strings.Join(visibleIDs(a), ","); got != "luz-001" {
		t.Fatalf("paid = %s, want luz-001", got)
	}

	m, _ = a.Update(keyMsg("3"))
	a = m.(App)
	if len(a.visible) != 4 {
		t.Fatalf("all = %v, want 4 bills", visibleIDs(a))
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	repo := fixtureRepo()
	a := loadedApp(t, repo, nil)

	m, cmd := a.Update(keyMsg("x"))
	a = m.(App)
	if cmd != nil || !a.confirmDelete {
		t.Fatal("x should ask for confirmation without running anything")
	}
	if !strings.Contains(a.statusFlash(), "[y/N]") {
		t.Errorf("flash = %q, want a y/N prompt", a.statusFlash())
	}

	m, cmd = a.Update(keyMsg("y"))
	a = m.(App)
	if cmd == nil {
		t.Fatal("y should return the delete command")
	}
	msg := cmd()
	if len(repo.deleted) != 1 || repo.deleted[0] != "admin-001" {
		t.Fatalf("deleted = %v, want [admin-001]", repo.deleted)
	}

	m, cmd = a.Update(msg)
	a = m.(App)
	if !strings.HasPrefix(a.flash, "Deleted ") {
		t.Errorf("flash = %q, want Deleted ...", a.flash)
	}
	if cmd == nil {
		t.Error("a successful mutation should reload")
	}
}

func TestDeleteCancelled(t *testing.T) {
	repo := fixtureRepo()
	a := loadedApp(t, repo, nil)

	m, _ := a.Update(keyMsg("x"))
	m, cmd := m.(App).Update(keyMsg("n"))
	a = m.(App)
	if cmd != nil || len(repo.deleted) != 0 {
		t.Fatal("n must not delete")
	}
	if a.confirmDelete {
		t.Error("confirmation should be cleared")
	}
}

func TestRenewOnlyPaid(t *testing.T) {
	repo := fixtureRepo()
	a := loadedApp(t, repo, nil)

	m, cmd := a.Update(keyMsg("r"))
	a = m.(App)
	if cmd != nil {
		t.Fatal("renewing an unpaid bill should do nothing")
	}
	if !strings.Contains(a.flash, "not paid yet") {
		t.Errorf("flash = %q", a.flash)
	}

	m, _ = a.Update(keyMsg("2"))
	_, cmd = m.(App).Update(keyMsg("r"))
	if cmd == nil {
		t.Fatal("renew on the paid tab should return a command")
	}
	cmd()
	p, ok := repo.patched["luz-001"]
	if !ok || p.Paid == nil || *p.Paid || !p.ClearPaidDate {
		t.Fatalf("patch = %+v, want a renew patch", p)
	}
}

func TestMutationReportsSyncFailure(t *testing.T) {
	repo := fixtureRepo()
	a := loadedApp(t, repo, func(context.Context) error {
		return errors.New("offline")
	})

	m, _ := a.Update(keyMsg("2"))
	_, cmd := m.(App).Update(keyMsg("r"))
	msg := cmd()

	m, _ = a.Update(msg)
	a = m.(App)
	if !strings.Contains(a.flash, "sync failed: offline") {
		t.Errorf("flash = %q, want sync failure", a.flash)
	}
	if repo.obligations[0].Paid {
		t.Error("local renew should stand even when sync fails")
	}
}

func TestPayOpensFormOnlyForUnpaid(t *testing.T) {
	a := loadedApp(t, fixtureRepo(), nil)

	m, _ := a.Update(keyMsg("p"))
	a = m.(App)
	if a.payForm == nil || a.payID != "admin-001" {
		t.Fatalf("pay form not opened for admin-001 (id %q)", a.payID)
	}
	if a.payVals.Amount != "350000" {
		t.Errorf("prefilled amount = %q, want 350000", a.payVals.Amount)
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = m.(App)
	if a.payForm != nil {
		t.Fatal("esc should close the pay form")
	}

	m, _ = a.Update(keyMsg("2"))
	m, _ = m.(App).Update(keyMsg("p"))
	a = m.(App)
	if a.payForm != nil {
		t.Fatal("paid bills cannot be paid again")
	}
}

func TestParsePayAmount(t *testing.T) {
	fallback := decimal.NewFromInt(45000)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "45000", false},
		{"  ", "45000", false},
		{"50000", "50000", false},
		{"$1,250.50", "1250.5", false},
		{"abc", "", true},
		{"-5", "", true},
	}
	for _, tt := range tests {
		got, err := parsePayAmount(tt.in, fallback)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePayAmount(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got.String() != tt.want {
			t.Errorf("parsePayAmount(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}
}

func TestMonthStrip(t *testing.T) {
	a := loadedApp(t, fixtureRepo(), nil)
	strip := monthStrip(a.evals, a.today)

	if len(strip) != 31 {
		t.Fatalf("len = %d, want 31", len(strip))
	}
	if strip[9] != 350000 {
		t.Errorf("day 10 = %v, want 350000", strip[9])
	}
	if strip[21] != 1 {
		t.Errorf("day 22 = %v, want 1 for a bill without amount", strip[21])
	}
	if strip[24] != 45000 {
		t.Errorf("day 25 = %v, want 45000", strip[24])
	}
	if strip[17] != 0 {
		t.Errorf("day 18 = %v, paid bills should not show", strip[17])
	}
}

func TestViewRendersWithoutPanic(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := loadedApp(t, fixtureRepo(), nil)
	for _, tab := range []string{"1", "2", "3", "s"} {
		m, _ := a.Update(keyMsg(tab))
		view := m.(App).View()
		if got := len(strings.Split(view, "\n")); got != 40 {
			t.Errorf("tab %s: view has %d lines, want 40", tab, got)
		}
	}
}

func TestSettingsSaveAppliesThreshold(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := loadedApp(t, fixtureRepo(), nil)
	a.activeTab = 3

	a.settings.cursor = settingsFieldThreshold
	a.settings.input = newSettingsInput()
	a.settings.input.SetValue("1")
	a.settingsSave()
	if a.settings.saveErr != nil {
		t.Fatalf("save: %v", a.settings.saveErr)
	}
	if a.opts.Threshold != 1 {
		t.Errorf("threshold = %d, want 1", a.opts.Threshold)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Alerts.ThresholdDays != 1 {
		t.Errorf("saved threshold = %d, want 1", cfg.Alerts.ThresholdDays)
	}

	a.settings.input.SetValue("soon")
	a.settingsSave()
	if a.settings.saveErr == nil {
		t.Error("non-numeric threshold should be rejected")
	}
}

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	vals.Threshold = "6"
	vals.NotifyMode = config.ModeDaily
	vals.NotifyHour = "8"
	vals.SyncRepo = "home/bills"

	if err := ApplySetup(&cfg, *vals); err != nil {
		t.Fatal(err)
	}
	if cfg.Alerts.ThresholdDays != 6 || cfg.Notify.Mode != config.ModeDaily || cfg.Notify.Hour != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Sync.Owner != "home" || cfg.Sync.Repo != "bills" {
		t.Errorf("sync = %+v", cfg.Sync)
	}

	vals.SyncRepo = "not-a-repo"
	if err := ApplySetup(&cfg, *vals); err == nil {
		t.Error("malformed repo should fail")
	}
}
