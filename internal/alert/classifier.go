// Package alert derives urgency status and reminders from projected due
// dates. Everything here is a pure function of its arguments.
package alert

import (
	"fmt"

	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/model"
)

// DefaultThreshold is the number of days before the due date at which an
// unpaid obligation becomes urgent.
const DefaultThreshold = 4

// Status is the urgency state of an obligation.
type Status int

const (
	StatusPending Status = iota
	StatusUrgent
	StatusDueToday
	StatusOverdue
	StatusPaid
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUrgent:
		return "urgent"
	case StatusDueToday:
		return "due_today"
	case StatusOverdue:
		return "overdue"
	case StatusPaid:
		return "paid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Alerting reports whether the status should be highlighted.
func (s Status) Alerting() bool {
	return s == StatusUrgent || s == StatusDueToday || s == StatusOverdue
}

// Result is a status and its display text.
type Result struct {
	Status Status
	Text   string
}

// Classify derives the status of o from its day count. Rules are checked
// in order: paid, overdue, due today, within threshold, pending.
func Classify(o model.Obligation, days, threshold int) Result {
	switch {
	case o.Paid:
		return Result{Status: StatusPaid, Text: "Paid"}
	case days < 0:
		return Result{Status: StatusOverdue, Text: "Overdue by " + cli.Plural(-days, "day")}
	case days == 0:
		return Result{Status: StatusDueToday, Text: "Due today"}
	case days <= threshold:
		return Result{Status: StatusUrgent, Text: countdown(days)}
	default:
		return Result{Status: StatusPending, Text: countdown(days)}
	}
}

func countdown(days int) string {
	if days == 1 {
		return "Due tomorrow"
	}
	return fmt.Sprintf("Due in %d days", days)
}

// ShouldNotify reports whether a reminder is due: unpaid and within
// [0, threshold] days of the due date.
func ShouldNotify(o model.Obligation, days, threshold int) bool {
	return !o.Paid && days >= 0 && days <= threshold
}

// Title heads every reminder.
const Title = "💰 Payment reminder"

// Message is the reminder body for o at the given day count.
func Message(o model.Obligation, days int) string {
	amount := cli.FormatAmount(o.Amount)
	switch days {
	case 0:
		return fmt.Sprintf("⚠️ %s is due TODAY! Amount: %s", o.Name(), amount)
	case 1:
		return fmt.Sprintf("⚠️ %s is due TOMORROW! Amount: %s", o.Name(), amount)
	default:
		return fmt.Sprintf("%s is due in %d days. Amount: %s", o.Name(), days, amount)
	}
}
