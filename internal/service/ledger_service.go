package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// LedgerService serves student ledger reads and applies payments.
type LedgerService struct {
	fees LedgerStore
	log  zerolog.Logger
	now  func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(fees LedgerStore, log zerolog.Logger, now func() time.Time) *LedgerService {
	return &LedgerService{
		fees: fees,
		log:  log.With().Str("component", "ledger_service").Logger(),
		now:  now,
	}
}

// StudentFees returns a student's ledger rows under active structures with
// late fee, balance and total computed for today. An unknown student yields
// an empty ledger.
func (s *LedgerService) StudentFees(ctx context.Context, school model.SchoolCode, studentID int64, filter model.LedgerFilter) (*model.StudentLedger, error) {
	entries, err := s.fees.ListByStudent(ctx, school, studentID, filter)
	if err != nil {
		s.log.Error().Err(err).
			Str("op", "student_fees").
			Str("school_code", school.String()).
			Int64("student_id", studentID).
			Msg("failed to list student fees")
		return nil, fmt.Errorf("list student fees: %w", err)
	}

	asOf := s.now()
	ledger := &model.StudentLedger{
		StudentID: studentID,
		Fees:      make([]model.LedgerLine, 0, len(entries)),
		Totals: model.LedgerTotals{
			BaseAmount: decimal.Zero,
			PaidAmount: decimal.Zero,
			BalanceDue: decimal.Zero,
			LateFee:    decimal.Zero,
			TotalDue:   decimal.Zero,
		},
	}
	for _, e := range entries {
		line := model.NewLedgerLine(e, asOf)
		if filter.Status != "" && line.Status != filter.Status {
			continue
		}
		ledger.Fees = append(ledger.Fees, line)
		ledger.Totals.BaseAmount = ledger.Totals.BaseAmount.Add(line.BaseAmount)
		ledger.Totals.PaidAmount = ledger.Totals.PaidAmount.Add(line.PaidAmount)
		ledger.Totals.BalanceDue = ledger.Totals.BalanceDue.Add(line.BalanceDue)
		ledger.Totals.LateFee = ledger.Totals.LateFee.Add(line.LateFee)
		ledger.Totals.TotalDue = ledger.Totals.TotalDue.Add(line.TotalDue)
	}
	return ledger, nil
}

// GetFee returns one ledger row by id, including rows whose structure has
// been deactivated.
func (s *LedgerService) GetFee(ctx context.Context, school model.SchoolCode, id int64) (*model.LedgerLine, error) {
	entry, err := s.fees.GetEntry(ctx, school, id)
	if err != nil {
		return nil, notFound(err)
	}
	line := model.NewLedgerLine(*entry, s.now())
	return &line, nil
}

// RecordPayment applies a payment to a ledger row under the row lock.
func (s *LedgerService) RecordPayment(ctx context.Context, school model.SchoolCode, feeID int64, recorder string, req model.RecordPaymentRequest) (*model.PaymentReceipt, error) {
	if recorder == "" {
		return nil, model.ErrApproverRequired
	}
	if req.Amount == nil || !req.Amount.IsPositive() {
		return nil, invalid("amount", "amount must be greater than zero")
	}

	now := s.now()
	payment := &model.FeePayment{
		StudentFeeID: feeID,
		Amount:       *req.Amount,
		PaymentMode:  req.PaymentMode,
		Reference:    req.Reference,
		PaidAt:       now,
		RecordedBy:   recorder,
	}
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}

	entry, err := s.fees.ApplyPayment(ctx, school, payment, now)
	if err != nil {
		err = notFound(err)
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, model.ErrOverpayment), errors.Is(err, model.ErrInvalidAmount):
			return nil, err
		}
		s.log.Error().Err(err).
			Str("op", "record_payment").
			Str("school_code", school.String()).
			Int64("student_fee_id", feeID).
			Msg("failed to apply payment")
		return nil, fmt.Errorf("apply payment: %w", err)
	}

	s.log.Info().
		Str("school_code", school.String()).
		Int64("student_fee_id", feeID).
		Str("amount", payment.Amount.String()).
		Str("status", string(entry.Status)).
		Msg("payment applied")
	return &model.PaymentReceipt{Payment: *payment, Fee: model.NewLedgerLine(*entry, now)}, nil
}
