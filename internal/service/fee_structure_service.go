package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/latefee"
	"github.com/stemsi/feeledger-backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// FeeStructureService manages the fee structure catalog and generates
// ledger rows from it.
type FeeStructureService struct {
	structures FeeStructureStore
	fees       LedgerStore
	fines      FeeFineStore
	log        zerolog.Logger
	now        func() time.Time
}

// NewFeeStructureService creates a new FeeStructureService.
func NewFeeStructureService(structures FeeStructureStore, fees LedgerStore, fines FeeFineStore, log zerolog.Logger, now func() time.Time) *FeeStructureService {
	return &FeeStructureService{
		structures: structures,
		fees:       fees,
		fines:      fines,
		log:        log.With().Str("component", "fee_structure_service").Logger(),
		now:        now,
	}
}

// Create stores a new active structure. At most one active structure may
// bill a (class, section, academic year, component) scope.
func (s *FeeStructureService) Create(ctx context.Context, school model.SchoolCode, req model.CreateFeeStructureRequest) (*model.FeeStructure, error) {
	if req.Amount == nil || req.Amount.IsNegative() {
		return nil, invalid("amount", "amount must be zero or greater")
	}

	policy, err := s.resolvePolicy(ctx, school, req)
	if err != nil {
		return nil, err
	}

	structure := &model.FeeStructure{
		SchoolCode:   school,
		Name:         strings.TrimSpace(req.Name),
		Component:    strings.ToLower(strings.TrimSpace(req.Component)),
		ClassID:      req.ClassID,
		Section:      strings.TrimSpace(req.Section),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Amount:       *req.Amount,
		LateFee:      policy,
	}

	exists, err := s.structures.HasActiveScope(ctx, school, structure.ClassID, structure.Section, structure.AcademicYear, structure.Component)
	if err != nil {
		s.log.Error().Err(err).Str("op", "create_structure").Str("school_code", school.String()).Msg("failed to check structure scope")
		return nil, fmt.Errorf("check structure scope: %w", err)
	}
	if exists {
		return nil, ErrDuplicateActiveStructure
	}

	if err := s.structures.Create(ctx, structure); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateActiveStructure
		}
		s.log.Error().Err(err).Str("op", "create_structure").Str("school_code", school.String()).Msg("failed to create fee structure")
		return nil, fmt.Errorf("create fee structure: %w", err)
	}

	s.log.Info().
		Str("school_code", school.String()).
		Int64("structure_id", structure.ID).
		Str("component", structure.Component).
		Msg("fee structure created")
	return structure, nil
}

func (s *FeeStructureService) resolvePolicy(ctx context.Context, school model.SchoolCode, req model.CreateFeeStructureRequest) (latefee.Policy, error) {
	if req.FineID != nil {
		fine, err := s.fines.GetByID(ctx, school, *req.FineID)
		if err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return latefee.Policy{}, invalid("fine_id", "fine does not exist")
			}
			return latefee.Policy{}, fmt.Errorf("get fee fine: %w", err)
		}
		if !fine.IsActive {
			return latefee.Policy{}, invalid("fine_id", "fine is inactive")
		}
		return fine.Policy(), nil
	}

	policy := latefee.Policy{
		Type:            req.LateFeeType,
		Value:           decimal.Zero,
		GracePeriodDays: req.GracePeriodDays,
	}
	if policy.Type == "" {
		policy.Type = latefee.TypeNone
	}
	if req.LateFeeValue != nil {
		policy.Value = *req.LateFeeValue
	}
	if policy.Value.IsNegative() {
		return latefee.Policy{}, invalid("late_fee_value", "late_fee_value must be zero or greater")
	}
	if policy.Type != latefee.TypeNone && req.LateFeeValue == nil {
		return latefee.Policy{}, invalid("late_fee_value", "late_fee_value is required for this late_fee_type")
	}
	return policy, nil
}

// List returns a school's structures.
func (s *FeeStructureService) List(ctx context.Context, school model.SchoolCode, filter model.FeeStructureFilter) ([]model.FeeStructure, error) {
	structures, err := s.structures.List(ctx, school, filter)
	if err != nil {
		s.log.Error().Err(err).Str("op", "list_structures").Str("school_code", school.String()).Msg("failed to list fee structures")
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return structures, nil
}

// Get returns one structure, active or not.
func (s *FeeStructureService) Get(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error) {
	structure, err := s.structures.GetByID(ctx, school, id)
	if err != nil {
		return nil, notFound(err)
	}
	return structure, nil
}

// Deactivate hides a structure's rows from current views. The rows stay.
func (s *FeeStructureService) Deactivate(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error) {
	structure, err := s.structures.Deactivate(ctx, school, id)
	if err != nil {
		err = notFound(err)
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("op", "deactivate_structure").Str("school_code", school.String()).Int64("structure_id", id).Msg("failed to deactivate fee structure")
		}
		return nil, err
	}

	s.log.Info().Str("school_code", school.String()).Int64("structure_id", id).Msg("fee structure deactivated")
	return structure, nil
}

// Assign creates one ledger row per student for a billing period. Students
// already billed for the period under this structure are skipped.
func (s *FeeStructureService) Assign(ctx context.Context, school model.SchoolCode, id int64, req model.AssignFeeStructureRequest) (*model.AssignResult, error) {
	if req.DueDate == nil {
		return nil, invalid("due_date", "due_date is required")
	}
	structure, err := s.Get(ctx, school, id)
	if err != nil {
		return nil, err
	}
	if !structure.IsActive {
		return nil, ErrStructureInactive
	}

	amount := structure.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount.IsNegative() {
		return nil, invalid("amount", "amount must be zero or greater")
	}

	now := s.now()
	seen := make(map[int64]struct{}, len(req.StudentIDs))
	rows := make([]model.StudentFee, 0, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		if _, dup := seen[studentID]; dup {
			continue
		}
		seen[studentID] = struct{}{}

		row := model.StudentFee{
			SchoolCode:       school,
			StudentID:        studentID,
			FeeStructureID:   structure.ID,
			ClassID:          structure.ClassID,
			Section:          structure.Section,
			BillingPeriod:    strings.TrimSpace(req.BillingPeriod),
			BaseAmount:       amount,
			AdjustmentAmount: decimal.Zero,
			PaidAmount:       decimal.Zero,
			DueDate:          *req.DueDate,
		}
		row.Status = row.ResolveStatus(now)
		rows = append(rows, row)
	}

	created, err := s.fees.CreateBatch(ctx, school, rows)
	if err != nil {
		s.log.Error().Err(err).Str("op", "assign_structure").Str("school_code", school.String()).Int64("structure_id", id).Msg("failed to create ledger rows")
		return nil, fmt.Errorf("assign fee structure: %w", err)
	}

	s.log.Info().
		Str("school_code", school.String()).
		Int64("structure_id", id).
		Int("created", len(created)).
		Int("skipped", len(rows)-len(created)).
		Msg("fee structure assigned")
	return &model.AssignResult{Created: created, Skipped: len(rows) - len(created)}, nil
}
