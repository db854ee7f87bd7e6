// Package schedule computes the next due date of recurring obligations.
//
// Monthly obligations fall due every month on their due day. Bimonthly ones
// fall due on odd calendar months (January, March, ..., November); evaluated
// during an even month, the candidate moves one month forward. A paid
// obligation always counts down to the cycle after the current one.
package schedule

import (
	"errors"
	"time"

	"github.com/theirongolddev/paytrack/internal/model"
)

// Projection is the resolved due date and its signed distance from today.
// Negative days are overdue.
type Projection struct {
	Due  time.Time
	Days int
}

// Projector computes projections. The zero value is ready to use.
type Projector struct {
	// LegacyRollover moves an elapsed, unpaid due date to the next cycle
	// instead of reporting it as overdue.
	LegacyRollover bool
}

// Validate checks the cadence fields of o.
func Validate(o model.Obligation) error {
	return model.ValidateCadence(o.DueDay, o.Period)
}

// Project resolves the due date of o relative to today. Only the calendar
// day of today is used.
func (p Projector) Project(o model.Obligation, today time.Time) (Projection, error) {
	if today.IsZero() {
		return Projection{}, &ClockError{Err: errors.New("today is not set")}
	}
	if err := Validate(o); err != nil {
		return Projection{}, err
	}

	loc := today.Location()
	now := dateOf(today)
	period := int(o.Period)

	var due date
	if o.Paid {
		y, m := AddMonths(now.year, now.month, period)
		due = normalizeDate(y, m, o.DueDay)
	} else {
		y, m := now.year, now.month
		if o.Period == model.Bimonthly && m%2 == 0 {
			y, m = AddMonths(y, m, 1)
		}
		due = normalizeDate(y, m, o.DueDay)

		if p.LegacyRollover && due.before(now) {
			y, m = AddMonths(due.year, due.month, period)
			due = normalizeDate(y, m, o.DueDay)
		}
	}

	return Projection{Due: due.in(loc), Days: now.daysUntil(due)}, nil
}

// DaysUntilDue is Project with the default projector, returning only the
// day count.
func DaysUntilDue(o model.Obligation, today time.Time) (int, error) {
	pr, err := Projector{}.Project(o, today)
	if err != nil {
		return 0, err
	}
	return pr.Days, nil
}

// NextDueDate is Project with the default projector, returning only the date.
func NextDueDate(o model.Obligation, today time.Time) (time.Time, error) {
	pr, err := Projector{}.Project(o, today)
	if err != nil {
		return time.Time{}, err
	}
	return pr.Due, nil
}
