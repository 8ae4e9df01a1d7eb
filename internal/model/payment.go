package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is how a payment was received.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCard         PaymentMode = "card"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeOnline       PaymentMode = "online"
)

// FeePayment is one payment event against a ledger row.
type FeePayment struct {
	ID           int64           `json:"id"`
	SchoolCode   SchoolCode      `json:"school_code"`
	StudentFeeID int64           `json:"student_fee_id"`
	StudentID    int64           `json:"student_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentMode  PaymentMode     `json:"payment_mode"`
	Reference    *string         `json:"reference,omitempty"`
	PaidAt       time.Time       `json:"paid_at"`
	RecordedBy   string          `json:"recorded_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RecordPaymentRequest is the payload for applying a payment to a ledger row.
type RecordPaymentRequest struct {
	SchoolCode  string           `json:"school_code" binding:"required,school_code"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	PaymentMode PaymentMode      `json:"payment_mode" binding:"required,oneof=cash card upi bank_transfer cheque online"`
	Reference   *string          `json:"reference" binding:"omitempty,max=64"`
	PaidAt      *time.Time       `json:"paid_at"`
}

// PaymentReceipt is returned after a payment is applied.
type PaymentReceipt struct {
	Payment FeePayment `json:"payment"`
	Fee     LedgerLine `json:"fee"`
}
