package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/latefee"
)

// StudentFeeStatus enumerates the stored states of a ledger row.
type StudentFeeStatus string

const (
	StudentFeeStatusPending StudentFeeStatus = "pending"
	StudentFeeStatusPartial StudentFeeStatus = "partial"
	StudentFeeStatusPaid    StudentFeeStatus = "paid"
	StudentFeeStatusOverdue StudentFeeStatus = "overdue"
)

// Valid reports whether s is a known ledger status.
func (s StudentFeeStatus) Valid() bool {
	switch s {
	case StudentFeeStatusPending, StudentFeeStatusPartial, StudentFeeStatusPaid, StudentFeeStatusOverdue:
		return true
	}
	return false
}

// OutstandingStatuses are the statuses that still carry a balance.
var OutstandingStatuses = []StudentFeeStatus{
	StudentFeeStatusPending,
	StudentFeeStatusPartial,
	StudentFeeStatusOverdue,
}

// StudentFee is one ledger row: a single obligation of one student for one
// billing period under one structure. Balances are never stored; see
// BalanceDue and NewLedgerLine.
type StudentFee struct {
	ID               int64            `json:"id"`
	SchoolCode       SchoolCode       `json:"school_code"`
	StudentID        int64            `json:"student_id"`
	FeeStructureID   int64            `json:"fee_structure_id"`
	ClassID          int              `json:"class_id"`
	Section          string           `json:"section"`
	BillingPeriod    string           `json:"billing_period"`
	BaseAmount       decimal.Decimal  `json:"base_amount"`
	AdjustmentAmount decimal.Decimal  `json:"adjustment_amount"`
	PaidAmount       decimal.Decimal  `json:"paid_amount"`
	DueDate          Date             `json:"due_date"`
	Status           StudentFeeStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Charge is the amount owed before payments.
func (f *StudentFee) Charge() decimal.Decimal {
	return f.BaseAmount.Add(f.AdjustmentAmount)
}

// BalanceDue is base + adjustments - payments.
func (f *StudentFee) BalanceDue() decimal.Decimal {
	return f.Charge().Sub(f.PaidAmount)
}

// ResolveStatus derives the status the row should carry as of asOf.
func (f *StudentFee) ResolveStatus(asOf time.Time) StudentFeeStatus {
	if !f.BalanceDue().IsPositive() {
		return StudentFeeStatusPaid
	}
	if f.PaidAmount.IsPositive() && f.PaidAmount.LessThan(f.Charge()) {
		return StudentFeeStatusPartial
	}
	if latefee.DaysLate(f.DueDate.Time, 0, asOf) > 0 {
		return StudentFeeStatusOverdue
	}
	return StudentFeeStatusPending
}

// ApplyPayment adds a payment and refreshes the status. The amount must be
// positive and may not exceed the balance due.
func (f *StudentFee) ApplyPayment(amount decimal.Decimal, asOf time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(f.BalanceDue()) {
		return ErrOverpayment
	}
	f.PaidAmount = f.PaidAmount.Add(amount)
	f.Status = f.ResolveStatus(asOf)
	return nil
}

// ApplyAdjustment folds an approved adjustment into the running total.
func (f *StudentFee) ApplyAdjustment(amount decimal.Decimal, asOf time.Time) {
	f.AdjustmentAmount = f.AdjustmentAmount.Add(amount)
	f.Status = f.ResolveStatus(asOf)
}

// StructureRef is the slice of the owning structure joined onto ledger reads.
type StructureRef struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Component    string         `json:"component"`
	AcademicYear string         `json:"academic_year"`
	IsActive     bool           `json:"is_active"`
	LateFee      latefee.Policy `json:"late_fee"`
}

// LedgerEntry is a ledger row joined with its structure.
type LedgerEntry struct {
	StudentFee
	Structure StructureRef `json:"fee_structure"`
}

// LedgerLine is a ledger entry with every derived amount computed for a
// given day.
type LedgerLine struct {
	LedgerEntry
	LateFee     decimal.Decimal `json:"late_fee"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
	TotalDue    decimal.Decimal `json:"total_due"`
	DaysOverdue int             `json:"days_overdue"`
	IsOverdue   bool            `json:"is_overdue"`
}

// NewLedgerLine computes balance, late fee and overdue state as of asOf.
// Every read path and report builds its amounts through this function.
func NewLedgerLine(e LedgerEntry, asOf time.Time) LedgerLine {
	line := LedgerLine{
		LedgerEntry: e,
		LateFee:     decimal.Zero,
		BalanceDue:  e.BalanceDue(),
	}
	// The stored status is only refreshed on writes; a row that went past
	// due since then still reads as pending there.
	line.Status = e.ResolveStatus(asOf)
	if line.BalanceDue.IsPositive() {
		line.DaysOverdue = latefee.DaysLate(e.DueDate.Time, 0, asOf)
		line.IsOverdue = line.DaysOverdue > 0
		line.LateFee = latefee.Calculate(e.Structure.LateFee, e.BaseAmount, e.DueDate.Time, asOf)
	}
	line.TotalDue = line.BalanceDue.Add(line.LateFee)
	return line
}

// LedgerFilter narrows a student's ledger read. Status matches the status
// as of the read, not the stored column.
type LedgerFilter struct {
	AcademicYear string
	Status       StudentFeeStatus
}

// StudentLedger is the response for a student's fee listing.
type StudentLedger struct {
	StudentID int64        `json:"student_id"`
	Fees      []LedgerLine `json:"fees"`
	Totals    LedgerTotals `json:"totals"`
}

// LedgerTotals sums the derived amounts of a ledger listing.
type LedgerTotals struct {
	BaseAmount decimal.Decimal `json:"base_amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	LateFee    decimal.Decimal `json:"late_fee"`
	TotalDue   decimal.Decimal `json:"total_due"`
}
