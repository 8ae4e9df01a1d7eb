package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/latefee"
)

// FineType enumerates catalog fine kinds.
type FineType string

const (
	FineTypeFixed      FineType = "fixed"
	FineTypePercentage FineType = "percentage"
	FineTypeDaily      FineType = "daily"
)

// FeeFine is a tenant catalog entry used to seed late-fee policies and
// fine adjustments.
type FeeFine struct {
	ID                  int64               `json:"id"`
	SchoolCode          SchoolCode          `json:"school_code"`
	Name                string              `json:"name"`
	FineType            FineType            `json:"fine_type"`
	Value               decimal.Decimal     `json:"value"`
	ApplicableAfterDays int                 `json:"applicable_after_days"`
	MaxFineAmount       decimal.NullDecimal `json:"max_fine_amount"`
	IsActive            bool                `json:"is_active"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Policy maps the fine onto the late-fee calculator.
func (f *FeeFine) Policy() latefee.Policy {
	p := latefee.Policy{
		Value:           f.Value,
		GracePeriodDays: f.ApplicableAfterDays,
		Cap:             f.MaxFineAmount,
	}
	switch f.FineType {
	case FineTypeFixed:
		p.Type = latefee.TypeFlat
	case FineTypeDaily:
		p.Type = latefee.TypePerDay
	case FineTypePercentage:
		p.Type = latefee.TypePercentage
	default:
		p.Type = latefee.TypeNone
	}
	return p
}

// AmountFor is the fine owed on a ledger row as of asOf.
func (f *FeeFine) AmountFor(fee *StudentFee, asOf time.Time) decimal.Decimal {
	return latefee.Calculate(f.Policy(), fee.BaseAmount, fee.DueDate.Time, asOf)
}

// CreateFeeFineRequest is the payload for creating a catalog fine.
type CreateFeeFineRequest struct {
	SchoolCode          string           `json:"school_code" binding:"required,school_code"`
	Name                string           `json:"name" binding:"required,min=2,max=120"`
	FineType            FineType         `json:"fine_type" binding:"required,oneof=fixed percentage daily"`
	Value               *decimal.Decimal `json:"value" binding:"required"`
	ApplicableAfterDays int              `json:"applicable_after_days" binding:"omitempty,min=0,max=365"`
	MaxFineAmount       *decimal.Decimal `json:"max_fine_amount"`
}
