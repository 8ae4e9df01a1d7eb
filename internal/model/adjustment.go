package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentStatus enumerates the workflow states of an adjustment.
// pending is the only non-terminal state.
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "pending"
	AdjustmentStatusApproved AdjustmentStatus = "approved"
	AdjustmentStatusRejected AdjustmentStatus = "rejected"
)

// AdjustmentType classifies why a ledger row is being adjusted.
type AdjustmentType string

const (
	AdjustmentTypeDiscount   AdjustmentType = "discount"
	AdjustmentTypeFine       AdjustmentType = "fine"
	AdjustmentTypeCorrection AdjustmentType = "correction"
)

// Adjustment is a proposed signed delta to one ledger row's
// adjustment_amount. Only approval folds it into the ledger.
type Adjustment struct {
	ID              uuid.UUID        `json:"id"`
	SchoolCode      SchoolCode       `json:"school_code"`
	StudentFeeID    int64            `json:"student_fee_id"`
	Type            AdjustmentType   `json:"adjustment_type"`
	Amount          decimal.Decimal  `json:"amount"`
	Reason          string           `json:"reason"`
	FineID          *int64           `json:"fine_id,omitempty"`
	Status          AdjustmentStatus `json:"status"`
	ProposedBy      string           `json:"proposed_by"`
	ApprovedBy      *string          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RejectedBy      *string          `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ValidateSign checks the amount against the adjustment type: discounts
// reduce the balance, fines increase it, corrections go either way.
func (a *Adjustment) ValidateSign() error {
	switch {
	case a.Amount.IsZero():
		return ErrInvalidAmount
	case a.Type == AdjustmentTypeDiscount && a.Amount.IsPositive():
		return ErrInvalidAmount
	case a.Type == AdjustmentTypeFine && a.Amount.IsNegative():
		return ErrInvalidAmount
	}
	return nil
}

// Approve moves a pending adjustment to approved.
func (a *Adjustment) Approve(approver string, at time.Time) error {
	if a.Status != AdjustmentStatusPending {
		return ErrAdjustmentNotPending
	}
	if approver == "" {
		return ErrApproverRequired
	}
	a.Status = AdjustmentStatusApproved
	a.ApprovedBy = &approver
	a.ApprovedAt = &at
	a.UpdatedAt = at
	return nil
}

// Reject moves a pending adjustment to rejected.
func (a *Adjustment) Reject(rejector, reason string, at time.Time) error {
	if a.Status != AdjustmentStatusPending {
		return ErrAdjustmentNotPending
	}
	if rejector == "" {
		return ErrApproverRequired
	}
	a.Status = AdjustmentStatusRejected
	a.RejectedBy = &rejector
	a.RejectedAt = &at
	if reason != "" {
		a.RejectionReason = &reason
	}
	a.UpdatedAt = at
	return nil
}

// AdjustmentFilter narrows an adjustment listing.
type AdjustmentFilter struct {
	Status       AdjustmentStatus
	StudentFeeID *int64
}

// ProposeAdjustmentRequest is the payload for proposing an adjustment.
// Exactly one of Amount or FineID must be set.
type ProposeAdjustmentRequest struct {
	SchoolCode   string           `json:"school_code" binding:"required,school_code"`
	StudentFeeID int64            `json:"student_fee_id" binding:"required,min=1"`
	Type         AdjustmentType   `json:"adjustment_type" binding:"required,oneof=discount fine correction"`
	Amount       *decimal.Decimal `json:"amount"`
	FineID       *int64           `json:"fine_id" binding:"omitempty,min=1"`
	Reason       string           `json:"reason" binding:"required,min=3,max=500"`
}

// RejectAdjustmentRequest is the payload for rejecting an adjustment.
type RejectAdjustmentRequest struct {
	SchoolCode string `json:"school_code" binding:"required,school_code"`
	Reason     string `json:"reason" binding:"required,min=3,max=500"`
}

// ApprovalResult is returned once an approval has landed on the ledger.
type ApprovalResult struct {
	AdjustmentID uuid.UUID  `json:"adjustment_id"`
	Adjustment   Adjustment `json:"adjustment"`
	Fee          StudentFee `json:"fee"`
}
