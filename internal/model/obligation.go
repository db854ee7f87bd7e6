// Package model defines domain types for paytrack obligations.
package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is the cadence of an obligation in months.
type Period int

const (
	Monthly   Period = 1
	Bimonthly Period = 2
)

// Valid reports whether p is a supported cadence.
func (p Period) Valid() bool {
	return p == Monthly || p == Bimonthly
}

// Suffix is appended to names in list views.
func (p Period) Suffix() string {
	if p == Bimonthly {
		return " (Bimestral)"
	}
	return ""
}

// Describe returns the human cadence, e.g. "day 25 every 2 months".
func (p Period) Describe(dueDay int) string {
	if p == Bimonthly {
		return "day " + strconv.Itoa(dueDay) + " every 2 months"
	}
	return "day " + strconv.Itoa(dueDay) + " of every month"
}

// Obligation is a recurring bill. It only holds the state of its current
// cycle; paying or renewing overwrites it.
type Obligation struct {
	ID       string
	Category Category
	Amount   decimal.Decimal // zero means unspecified
	DueDay   int
	Period   Period

	Paid       bool
	PaidDate   *time.Time
	PaidAmount *decimal.Decimal

	CreatedAt time.Time
}

// New returns an unpaid obligation with a fresh id.
func New(cat Category, amount decimal.Decimal, dueDay int, period Period, now time.Time) Obligation {
	return Obligation{
		ID:        uuid.NewString(),
		Category:  cat,
		Amount:    amount,
		DueDay:    dueDay,
		Period:    period,
		CreatedAt: now,
	}
}

// Name is the display name of the obligation's category.
func (o Obligation) Name() string { return o.Category.Name() }

// Label is the icon, name and cadence suffix used in lists.
func (o Obligation) Label() string {
	return o.Category.Symbol() + " " + o.Category.Name() + o.Period.Suffix()
}

// ValidateCadence checks the due day and period.
func ValidateCadence(dueDay int, period Period) error {
	if dueDay < 1 || dueDay > 31 {
		return &ValidationError{Field: "dueDay", Value: dueDay, Reason: "must be between 1 and 31"}
	}
	if !period.Valid() {
		return &ValidationError{Field: "periodMonths", Value: int(period), Reason: "must be 1 or 2"}
	}
	return nil
}

// Validate checks every field before the obligation is stored.
func (o Obligation) Validate() error {
	if err := ValidateCadence(o.DueDay, o.Period); err != nil {
		return err
	}
	if !o.Category.Valid() {
		return &ValidationError{Field: "category", Value: string(o.Category.Kind), Reason: "unknown category"}
	}
	if o.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Value: o.Amount.String(), Reason: "must not be negative"}
	}
	return nil
}
