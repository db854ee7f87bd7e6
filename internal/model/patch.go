package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Category   *Category
	Amount     *decimal.Decimal
	DueDay     *int
	Period     *Period
	Paid       *bool
	PaidDate   *time.Time
	PaidAmount *decimal.Decimal

	// ClearPaidDate wins over PaidDate.
	ClearPaidDate bool
}

// PayPatch settles the current cycle.
func PayPatch(at time.Time, amount decimal.Decimal) Patch {
	paid := true
	return Patch{Paid: &paid, PaidDate: &at, PaidAmount: &amount}
}

// RenewPatch moves a settled obligation back to pending for the next cycle.
func RenewPatch() Patch {
	paid := false
	return Patch{Paid: &paid, ClearPaidDate: true}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Category == nil && p.Amount == nil && p.DueDay == nil && p.Period == nil &&
		p.Paid == nil && p.PaidDate == nil && p.PaidAmount == nil && !p.ClearPaidDate
}

// Apply returns o with the patch applied.
func (p Patch) Apply(o Obligation) Obligation {
	if p.Category != nil {
		o.Category = *p.Category
	}
	if p.Amount != nil {
		o.Amount = *p.Amount
	}
	if p.DueDay != nil {
		o.DueDay = *p.DueDay
	}
	if p.Period != nil {
		o.Period = *p.Period
	}
	if p.Paid != nil {
		o.Paid = *p.Paid
	}
	if p.PaidDate != nil {
		d := *p.PaidDate
		o.PaidDate = &d
	}
	if p.ClearPaidDate {
		o.PaidDate = nil
	}
	if p.PaidAmount != nil {
		a := *p.PaidAmount
		o.PaidAmount = &a
	}
	return o
}
