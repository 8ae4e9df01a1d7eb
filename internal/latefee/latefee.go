// Package latefee computes late fees accrued on a ledger row.
//
// Calculate is pure: the same inputs always produce the same decimal, so
// ledger reads and aggregate reports agree on every amount they show.
package latefee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates the supported accrual policies.
type Type string

const (
	TypeNone       Type = "none"
	TypeFlat       Type = "flat"
	TypePerDay     Type = "per_day"
	TypePercentage Type = "percentage"
)

// Valid reports whether t is a recognised policy type.
func (t Type) Valid() bool {
	switch t {
	case TypeNone, TypeFlat, TypePerDay, TypePercentage:
		return true
	}
	return false
}

// Policy describes how a structure charges for late payment.
type Policy struct {
	Type            Type            `json:"type"`
	Value           decimal.Decimal `json:"value"`
	GracePeriodDays int             `json:"grace_period_days"`
	// Cap limits the accrued amount when set (seeded from a fine's max amount).
	Cap decimal.NullDecimal `json:"cap"`
}

var hundred = decimal.NewFromInt(100)

// DaysLate returns the number of whole calendar days asOf lies past
// dueDate+graceDays, or 0 when asOf is on or before that date.
func DaysLate(dueDate time.Time, graceDays int, asOf time.Time) int {
	if graceDays < 0 {
		graceDays = 0
	}
	effective := civil(dueDate).AddDate(0, 0, graceDays)
	day := civil(asOf)
	if !day.After(effective) {
		return 0
	}
	return int(day.Sub(effective).Hours() / 24)
}

// Calculate returns the late fee accrued by asOf. It never fails: an unknown
// or absent policy yields zero, and the result is clamped to >= 0 and
// rounded to two decimal places.
func Calculate(p Policy, baseAmount decimal.Decimal, dueDate, asOf time.Time) decimal.Decimal {
	days := DaysLate(dueDate, p.GracePeriodDays, asOf)
	if days == 0 {
		return decimal.Zero
	}
	if baseAmount.IsNegative() {
		baseAmount = decimal.Zero
	}
	n := decimal.NewFromInt(int64(days))

	var fee decimal.Decimal
	switch p.Type {
	case TypeFlat:
		fee = p.Value
	case TypePerDay:
		fee = p.Value.Mul(n)
	case TypePercentage:
		// Percentage accrues linearly for every day late, not once.
		fee = baseAmount.Mul(p.Value).Mul(n).Div(hundred)
	default:
		return decimal.Zero
	}

	if p.Cap.Valid && !p.Cap.Decimal.IsNegative() && fee.GreaterThan(p.Cap.Decimal) {
		fee = p.Cap.Decimal
	}
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee.Round(2)
}

// civil truncates t to midnight UTC of its own calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
