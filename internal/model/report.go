package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutstandingFilter narrows the outstanding-row scan behind every report.
// Rows under inactive structures are never returned.
type OutstandingFilter struct {
	ClassID      *int
	Section      string
	AcademicYear string
	DueFrom      *time.Time
	DueTo        *time.Time
	DueBefore    *time.Time
}

// PendingSummary totals a pending report.
type PendingSummary struct {
	TotalPending decimal.Decimal `json:"total_pending"`
	TotalLateFee decimal.Decimal `json:"total_late_fee"`
	Count        int             `json:"count"`
	StudentCount int             `json:"student_count"`
	OverdueCount int             `json:"overdue_count"`
}

// PendingReport lists every outstanding row.
type PendingReport struct {
	Rows    []LedgerLine   `json:"rows"`
	Summary PendingSummary `json:"summary"`
}

// OverdueSummary totals an overdue report.
type OverdueSummary struct {
	TotalOverdue       decimal.Decimal `json:"total_overdue"`
	TotalLateFee       decimal.Decimal `json:"total_late_fee"`
	Count              int             `json:"count"`
	StudentCount       int             `json:"student_count"`
	AverageDaysOverdue decimal.Decimal `json:"average_days_overdue"`
}

// OverdueReport lists outstanding rows past their due date.
type OverdueReport struct {
	Rows    []LedgerLine   `json:"rows"`
	Summary OverdueSummary `json:"summary"`
}

// StudentPendingTotal is one student's outstanding total for the
// highest-debt dashboard.
type StudentPendingTotal struct {
	StudentID       int64           `json:"student_id"`
	ClassID         int             `json:"class_id"`
	Section         string          `json:"section"`
	FeeCount        int             `json:"fee_count"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	LateFee         decimal.Decimal `json:"late_fee"`
	TotalDue        decimal.Decimal `json:"total_due"`
	EarliestDueDate Date            `json:"earliest_due_date"`
}

// CollectionLine is one payment event joined with its ledger scope.
type CollectionLine struct {
	PaymentID     int64           `json:"payment_id"`
	StudentFeeID  int64           `json:"student_fee_id"`
	StudentID     int64           `json:"student_id"`
	ClassID       int             `json:"class_id"`
	Section       string          `json:"section"`
	FeeName       string          `json:"fee_name"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   PaymentMode     `json:"payment_mode"`
	Reference     *string         `json:"reference,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
	RecordedBy    string          `json:"recorded_by"`
	BillingPeriod string          `json:"billing_period"`
}

// CollectionSummary totals a day of collections.
type CollectionSummary struct {
	TotalCollected decimal.Decimal                 `json:"total_collected"`
	PaymentCount   int                             `json:"payment_count"`
	StudentCount   int                             `json:"student_count"`
	ByPaymentMode  map[PaymentMode]decimal.Decimal `json:"by_payment_mode"`
	ByClass        map[int]decimal.Decimal         `json:"by_class"`
}

// DailyCollectionReport is the collection report for one calendar day.
type DailyCollectionReport struct {
	Date        string            `json:"date"`
	Timezone    string            `json:"timezone"`
	Collections []CollectionLine  `json:"collections"`
	Summary     CollectionSummary `json:"summary"`
}
