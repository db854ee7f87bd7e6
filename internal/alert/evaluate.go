package alert

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/notify"
	"github.com/theirongolddev/paytrack/internal/schedule"
)

// Evaluation pairs an obligation with its projection and status.
type Evaluation struct {
	Obligation model.Obligation
	Projection schedule.Projection
	Result     Result
}

// Days is the signed day count of the projection.
func (e Evaluation) Days() int { return e.Projection.Days }

// Evaluate projects and classifies every obligation. Obligations that fail
// to project are skipped and their errors joined into the returned error,
// so one malformed record does not hide the rest.
func Evaluate(p schedule.Projector, obs []model.Obligation, today time.Time, threshold int) ([]Evaluation, error) {
	evals := make([]Evaluation, 0, len(obs))
	var errs []error
	for _, o := range obs {
		pr, err := p.Project(o, today)
		if err != nil {
			errs = append(errs, fmt.Errorf("obligation %s: %w", o.ID, err))
			continue
		}
		evals = append(evals, Evaluation{
			Obligation: o,
			Projection: pr,
			Result:     Classify(o, pr.Days, threshold),
		})
	}
	return evals, errors.Join(errs...)
}

// SortByUrgency orders evaluations by ascending day count, keeping the
// input order for ties.
func SortByUrgency(evals []Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].Days() < evals[j].Days()
	})
}

// Tab selects which obligations a list shows.
type Tab int

const (
	TabPending Tab = iota
	TabPaid
	TabAll
)

// Tabs in display order.
var Tabs = []Tab{TabPending, TabPaid, TabAll}

func (t Tab) String() string {
	switch t {
	case TabPaid:
		return "paid"
	case TabAll:
		return "all"
	default:
		return "pending"
	}
}

// ParseTab accepts "pending", "paid" or "all".
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return TabPending, nil
	case "paid":
		return TabPaid, nil
	case "all":
		return TabAll, nil
	}
	return TabPending, fmt.Errorf("unknown tab %q (want pending, paid or all)", s)
}

// Filter returns the evaluations visible on tab.
func Filter(evals []Evaluation, tab Tab) []Evaluation {
	if tab == TabAll {
		return evals
	}
	out := make([]Evaluation, 0, len(evals))
	for _, e := range evals {
		if e.Obligation.Paid == (tab == TabPaid) {
			out = append(out, e)
		}
	}
	return out
}

// Tag identifies a reminder by obligation and due date.
func Tag(e Evaluation) string {
	return "payment-" + e.Obligation.ID + "-" + e.Projection.Due.Format(schedule.DayLayout)
}

// Reminders builds a notification for every evaluation that should notify.
// today is stamped on each so sinks can dedupe per day.
func Reminders(evals []Evaluation, today time.Time, threshold int) []notify.Notification {
	var out []notify.Notification
	for _, e := range evals {
		if !ShouldNotify(e.Obligation, e.Days(), threshold) {
			continue
		}
		out = append(out, notify.Notification{
			ObligationID: e.Obligation.ID,
			Status:       e.Result.Status.String(),
			Title:        Title,
			Message:      Message(e.Obligation, e.Days()),
			Tag:          Tag(e),
			Due:          e.Projection.Due,
			On:           schedule.StartOfDay(today),
		})
	}
	return out
}

// Counts tallies evaluations per status.
type Counts struct {
	Pending  int `json:"pending"`
	Urgent   int `json:"urgent"`
	DueToday int `json:"due_today"`
	Overdue  int `json:"overdue"`
	Paid     int `json:"paid"`
}

// Count tallies evals.
func Count(evals []Evaluation) Counts {
	var c Counts
	for _, e := range evals {
		switch e.Result.Status {
		case StatusPending:
			c.Pending++
		case StatusUrgent:
			c.Urgent++
		case StatusDueToday:
			c.DueToday++
		case StatusOverdue:
			c.Overdue++
		case StatusPaid:
			c.Paid++
		}
	}
	return c
}
