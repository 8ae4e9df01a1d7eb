package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feeledger-backend/internal/model"
)

const adjustmentColumns = `id, school_code, student_fee_id, adjustment_type, amount, reason, fine_id, status,
	proposed_by, approved_by, approved_at, rejected_by, rejected_at, rejection_reason, created_at, updated_at`

// AdjustmentRepository handles fee adjustment data access.
type AdjustmentRepository struct {
	pool *pgxpool.Pool
}

// NewAdjustmentRepository creates a new AdjustmentRepository.
func NewAdjustmentRepository(pool *pgxpool.Pool) *AdjustmentRepository {
	return &AdjustmentRepository{pool: pool}
}

func scanAdjustment(row rowScanner) (*model.Adjustment, error) {
	a := &model.Adjustment{}
	err := row.Scan(
		&a.ID, &a.SchoolCode, &a.StudentFeeID, &a.Type, &a.Amount, &a.Reason, &a.FineID, &a.Status,
		&a.ProposedBy, &a.ApprovedBy, &a.ApprovedAt, &a.RejectedBy, &a.RejectedAt, &a.RejectionReason,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a pending adjustment. The target ledger row must belong
// to the same school; otherwise pgx.ErrNoRows is returned.
func (r *AdjustmentRepository) Create(ctx context.Context, a *model.Adjustment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO fee_adjustments
			(id, school_code, student_fee_id, adjustment_type, amount, reason, fine_id, status, proposed_by)
		 SELECT $1, $2, sf.id, $4, $5, $6, $7, 'pending', $8
		 FROM student_fees sf
		 WHERE sf.id = $3 AND sf.school_code = $2
		 RETURNING status, created_at, updated_at`,
		a.ID, a.SchoolCode, a.StudentFeeID, a.Type, a.Amount, a.Reason, a.FineID, a.ProposedBy,
	).Scan(&a.Status, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an adjustment of the given school.
func (r *AdjustmentRepository) GetByID(ctx context.Context, school model.SchoolCode, id uuid.UUID) (*model.Adjustment, error) {
	return scanAdjustment(r.pool.QueryRow(ctx,
		`SELECT `+adjustmentColumns+` FROM fee_adjustments WHERE id = $1 AND school_code = $2`,
		id, school,
	))
}

// List retrieves a school's adjustments, newest first.
func (r *AdjustmentRepository) List(ctx context.Context, school model.SchoolCode, filter model.AdjustmentFilter) ([]model.Adjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM fee_adjustments WHERE school_code = $1`
	args := []interface{}{school}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.StudentFeeID != nil {
		args = append(args, *filter.StudentFeeID)
		query += ` AND student_fee_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := []model.Adjustment{}
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, *a)
	}
	return adjustments, rows.Err()
}

// Approve marks the adjustment approved and folds its amount into the
// ledger row in one transaction. Both rows are locked first, so concurrent
// approvals of the same adjustment serialize and only the first one sees
// it pending. Any failure rolls back both writes.
func (r *AdjustmentRepository) Approve(ctx context.Context, school model.SchoolCode, id uuid.UUID, approver string, at time.Time) (*model.Adjustment, *model.StudentFee, error) {
	var (
		adj *model.Adjustment
		fee *model.StudentFee
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		locked, err := lockAdjustment(ctx, tx, school, id)
		if err != nil {
			return err
		}
		if err := locked.Approve(approver, at); err != nil {
			return err
		}

		entry, err := lockLedgerEntry(ctx, tx, school, locked.StudentFeeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("student fee %d for adjustment %s: %w", locked.StudentFeeID, id, model.ErrLedgerRowMissing)
		}
		if err != nil {
			return fmt.Errorf("lock student fee %d: %w", locked.StudentFeeID, err)
		}
		entry.ApplyAdjustment(locked.Amount, at)

		if err := saveAdjustmentDecision(ctx, tx, locked); err != nil {
			return err
		}
		if err := updateLedgerBalances(ctx, tx, &entry.StudentFee); err != nil {
			return err
		}

		adj = locked
		fee = &entry.StudentFee
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return adj, fee, nil
}

// Reject marks a pending adjustment rejected. The ledger is not touched.
func (r *AdjustmentRepository) Reject(ctx context.Context, school model.SchoolCode, id uuid.UUID, rejector, reason string, at time.Time) (*model.Adjustment, error) {
	var adj *model.Adjustment
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		locked, err := lockAdjustment(ctx, tx, school, id)
		if err != nil {
			return err
		}
		if err := locked.Reject(rejector, reason, at); err != nil {
			return err
		}
		if err := saveAdjustmentDecision(ctx, tx, locked); err != nil {
			return err
		}
		adj = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func lockAdjustment(ctx context.Context, tx pgx.Tx, school model.SchoolCode, id uuid.UUID) (*model.Adjustment, error) {
	return scanAdjustment(tx.QueryRow(ctx,
		`SELECT `+adjustmentColumns+` FROM fee_adjustments
		 WHERE id = $1 AND school_code = $2
		 FOR UPDATE`,
		id, school,
	))
}

// saveAdjustmentDecision persists a terminal transition. The status guard
// makes the write a compare-and-swap even without the row lock.
func saveAdjustmentDecision(ctx context.Context, tx pgx.Tx, a *model.Adjustment) error {
	tag, err := tx.Exec(ctx,
		`UPDATE fee_adjustments
		 SET status = $1, approved_by = $2, approved_at = $3,
		     rejected_by = $4, rejected_at = $5, rejection_reason = $6, updated_at = $7
		 WHERE id = $8 AND school_code = $9 AND status = 'pending'`,
		a.Status, a.ApprovedBy, a.ApprovedAt, a.RejectedBy, a.RejectedAt, a.RejectionReason, a.UpdatedAt,
		a.ID, a.SchoolCode,
	)
	if err != nil {
		return fmt.Errorf("update adjustment %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAdjustmentNotPending
	}
	return nil
}
