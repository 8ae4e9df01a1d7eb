package model

import "errors"

// Domain rule violations raised by model state transitions.
var (
	ErrAdjustmentNotPending = errors.New("adjustment is not pending")
	ErrInvalidAmount        = errors.New("amount is not valid for this operation")
	ErrOverpayment          = errors.New("payment exceeds balance due")
	ErrApproverRequired     = errors.New("approver identity is required")
	ErrLedgerRowMissing     = errors.New("ledger row for adjustment is missing")
)
