package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// AdjustmentService runs the pending -> approved/rejected workflow.
type AdjustmentService struct {
	adjustments AdjustmentStore
	fees        LedgerStore
	fines       FeeFineStore
	log         zerolog.Logger
	now         func() time.Time
}

// NewAdjustmentService creates a new AdjustmentService.
func NewAdjustmentService(adjustments AdjustmentStore, fees LedgerStore, fines FeeFineStore, log zerolog.Logger, now func() time.Time) *AdjustmentService {
	return &AdjustmentService{
		adjustments: adjustments,
		fees:        fees,
		fines:       fines,
		log:         log.With().Str("component", "adjustment_service").Logger(),
		now:         now,
	}
}

// Propose records a pending adjustment. The ledger is not touched until
// approval. With a fine id the amount is computed from the fine catalog.
func (s *AdjustmentService) Propose(ctx context.Context, school model.SchoolCode, proposer string, req model.ProposeAdjustmentRequest) (*model.Adjustment, error) {
	if proposer == "" {
		return nil, model.ErrApproverRequired
	}
	if (req.Amount == nil) == (req.FineID == nil) {
		return nil, invalid("amount", "exactly one of amount or fine_id is required")
	}

	adj := &model.Adjustment{
		SchoolCode:   school,
		StudentFeeID: req.StudentFeeID,
		Type:         req.Type,
		Reason:       strings.TrimSpace(req.Reason),
		ProposedBy:   proposer,
	}

	if req.FineID != nil {
		if req.Type != model.AdjustmentTypeFine {
			return nil, invalid("adjustment_type", "fine_id can only seed a fine adjustment")
		}
		amount, err := s.fineAmount(ctx, school, req.StudentFeeID, *req.FineID)
		if err != nil {
			return nil, err
		}
		adj.Amount = amount
		adj.FineID = req.FineID
	} else {
		adj.Amount = req.Amount.Round(2)
	}

	if err := adj.ValidateSign(); err != nil {
		return nil, invalid("amount", "amount sign does not match adjustment_type or is zero")
	}

	if err := s.adjustments.Create(ctx, adj); err != nil {
		err = notFound(err)
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).
				Str("op", "propose_adjustment").
				Str("school_code", school.String()).
				Int64("student_fee_id", req.StudentFeeID).
				Msg("failed to create adjustment")
			return nil, fmt.Errorf("create adjustment: %w", err)
		}
		return nil, err
	}

	s.log.Info().
		Str("school_code", school.String()).
		Str("adjustment_id", adj.ID.String()).
		Int64("student_fee_id", adj.StudentFeeID).
		Str("amount", adj.Amount.String()).
		Msg("adjustment proposed")
	return adj, nil
}

func (s *AdjustmentService) fineAmount(ctx context.Context, school model.SchoolCode, feeID, fineID int64) (amount decimal.Decimal, err error) {
	fine, err := s.fines.GetByID(ctx, school, fineID)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return amount, invalid("fine_id", "fine does not exist")
		}
		return amount, fmt.Errorf("get fee fine: %w", err)
	}
	if !fine.IsActive {
		return amount, invalid("fine_id", "fine is inactive")
	}

	entry, err := s.fees.GetEntry(ctx, school, feeID)
	if err != nil {
		return amount, notFound(err)
	}

	amount = fine.AmountFor(&entry.StudentFee, s.now())
	if amount.IsZero() {
		return amount, ErrFineNotApplicable
	}
	return amount, nil
}

// Approve applies a pending adjustment to its ledger row. The status
// change and the balance change commit together or not at all; a second
// approval of the same adjustment fails with model.ErrAdjustmentNotPending.
func (s *AdjustmentService) Approve(ctx context.Context, school model.SchoolCode, id uuid.UUID, approver string) (*model.ApprovalResult, error) {
	if approver == "" {
		return nil, model.ErrApproverRequired
	}

	adj, fee, err := s.adjustments.Approve(ctx, school, id, approver, s.now())
	if err != nil {
		err = notFound(err)
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, model.ErrAdjustmentNotPending):
			return nil, err
		}
		s.log.Error().Err(err).
			Str("op", "approve_adjustment").
			Str("school_code", school.String()).
			Str("adjustment_id", id.String()).
			Str("approver", approver).
			Msg("adjustment approval rolled back")
		return nil, fmt.Errorf("approve adjustment: %w", err)
	}

	s.log.Info().
		Str("school_code", school.String()).
		Str("adjustment_id", id.String()).
		Int64("student_fee_id", fee.ID).
		Str("amount", adj.Amount.String()).
		Str("approver", approver).
		Msg("adjustment approved")
	return &model.ApprovalResult{AdjustmentID: adj.ID, Adjustment: *adj, Fee: *fee}, nil
}

// Reject closes a pending adjustment without touching the ledger.
func (s *AdjustmentService) Reject(ctx context.Context, school model.SchoolCode, id uuid.UUID, rejector, reason string) (*model.Adjustment, error) {
	if rejector == "" {
		return nil, model.ErrApproverRequired
	}

	adj, err := s.adjustments.Reject(ctx, school, id, rejector, strings.TrimSpace(reason), s.now())
	if err != nil {
		err = notFound(err)
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, model.ErrAdjustmentNotPending):
			return nil, err
		}
		s.log.Error().Err(err).
			Str("op", "reject_adjustment").
			Str("school_code", school.String()).
			Str("adjustment_id", id.String()).
			Msg("failed to reject adjustment")
		return nil, fmt.Errorf("reject adjustment: %w", err)
	}
	return adj, nil
}

// Get returns one adjustment.
func (s *AdjustmentService) Get(ctx context.Context, school model.SchoolCode, id uuid.UUID) (*model.Adjustment, error) {
	adj, err := s.adjustments.GetByID(ctx, school, id)
	if err != nil {
		return nil, notFound(err)
	}
	return adj, nil
}

// List returns a school's adjustments.
func (s *AdjustmentService) List(ctx context.Context, school model.SchoolCode, filter model.AdjustmentFilter) ([]model.Adjustment, error) {
	adjustments, err := s.adjustments.List(ctx, school, filter)
	if err != nil {
		s.log.Error().Err(err).Str("op", "list_adjustments").Str("school_code", school.String()).Msg("failed to list adjustments")
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return adjustments, nil
}
