package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/latefee"
)

// FeeStructure is a billing plan for one component of one class scope.
// Structures are never deleted; deactivation hides their ledger rows from
// current views without touching the rows.
type FeeStructure struct {
	ID            int64           `json:"id"`
	SchoolCode    SchoolCode      `json:"school_code"`
	Name          string          `json:"name"`
	Component     string          `json:"component"`
	ClassID       int             `json:"class_id"`
	Section       string          `json:"section"`
	AcademicYear  string          `json:"academic_year"`
	Amount        decimal.Decimal `json:"amount"`
	LateFee       latefee.Policy  `json:"late_fee"`
	IsActive      bool            `json:"is_active"`
	DeactivatedAt *time.Time      `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FeeStructureFilter narrows a structure listing.
type FeeStructureFilter struct {
	AcademicYear    string
	ClassID         *int
	IncludeInactive bool
}

// CreateFeeStructureRequest is the payload for creating a structure.
// FineID seeds the late-fee policy from the fine catalog and overrides the
// explicit late_fee_* fields.
type CreateFeeStructureRequest struct {
	SchoolCode      string           `json:"school_code" binding:"required,school_code"`
	Name            string           `json:"name" binding:"required,min=2,max=120"`
	Component       string           `json:"component" binding:"required,min=2,max=64"`
	ClassID         int              `json:"class_id" binding:"required,min=1"`
	Section         string           `json:"section" binding:"omitempty,max=16"`
	AcademicYear    string           `json:"academic_year" binding:"required,max=16"`
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	LateFeeType     latefee.Type     `json:"late_fee_type" binding:"omitempty,oneof=none flat per_day percentage"`
	LateFeeValue    *decimal.Decimal `json:"late_fee_value"`
	GracePeriodDays int              `json:"grace_period_days" binding:"omitempty,min=0,max=365"`
	FineID          *int64           `json:"fine_id" binding:"omitempty,min=1"`
}

// AssignFeeStructureRequest creates one ledger row per listed student.
type AssignFeeStructureRequest struct {
	SchoolCode    string           `json:"school_code" binding:"required,school_code"`
	StudentIDs    []int64          `json:"student_ids" binding:"required,min=1,max=1000,dive,min=1"`
	BillingPeriod string           `json:"billing_period" binding:"required,max=32"`
	DueDate       *Date            `json:"due_date" binding:"required"`
	Amount        *decimal.Decimal `json:"amount"`
}

// AssignResult reports a batch assignment.
type AssignResult struct {
	Created []StudentFee `json:"created"`
	Skipped int          `json:"skipped"`
}
