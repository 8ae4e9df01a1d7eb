package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// StudentFeeRepository handles ledger rows and payment events.
type StudentFeeRepository struct {
	pool *pgxpool.Pool
}

// NewStudentFeeRepository creates a new StudentFeeRepository.
func NewStudentFeeRepository(pool *pgxpool.Pool) *StudentFeeRepository {
	return &StudentFeeRepository{pool: pool}
}

// CreateBatch inserts ledger rows in one transaction. Rows that already
// exist for (student, structure, billing period) are skipped; only the
// inserted rows are returned.
func (r *StudentFeeRepository) CreateBatch(ctx context.Context, school model.SchoolCode, fees []model.StudentFee) ([]model.StudentFee, error) {
	created := make([]model.StudentFee, 0, len(fees))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, f := range fees {
			err := tx.QueryRow(ctx,
				`INSERT INTO student_fees
					(school_code, student_id, fee_structure_id, class_id, section, billing_period,
					 base_amount, adjustment_amount, paid_amount, due_date, status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)
				 ON CONFLICT (school_code, student_id, fee_structure_id, billing_period) DO NOTHING
				 RETURNING id, adjustment_amount, paid_amount, created_at, updated_at`,
				school, f.StudentID, f.FeeStructureID, f.ClassID, f.Section, f.BillingPeriod,
				f.BaseAmount, f.DueDate, f.Status,
			).Scan(&f.ID, &f.AdjustmentAmount, &f.PaidAmount, &f.CreatedAt, &f.UpdatedAt)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("insert student fee for student %d: %w", f.StudentID, err)
			}
			f.SchoolCode = school
			created = append(created, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByStudent returns a student's ledger rows under active structures.
func (r *StudentFeeRepository) ListByStudent(ctx context.Context, school model.SchoolCode, studentID int64, filter model.LedgerFilter) ([]model.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ledgerFrom + `
		WHERE sf.school_code = $1 AND sf.student_id = $2 AND fs.is_active`
	args := []interface{}{school, studentID}

	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		query += ` AND fs.academic_year = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY sf.due_date, sf.id`

	return r.queryEntries(ctx, query, args...)
}

// GetEntry retrieves one ledger row by id regardless of structure state,
// so rows under deactivated structures stay auditable.
func (r *StudentFeeRepository) GetEntry(ctx context.Context, school model.SchoolCode, id int64) (*model.LedgerEntry, error) {
	return scanLedgerEntry(r.pool.QueryRow(ctx,
		`SELECT `+ledgerColumns+ledgerFrom+` WHERE sf.id = $1 AND sf.school_code = $2`,
		id, school,
	))
}

// ApplyPayment locks the ledger row, applies the payment, and records the
// payment event in a single transaction.
func (r *StudentFeeRepository) ApplyPayment(ctx context.Context, school model.SchoolCode, p *model.FeePayment, asOf time.Time) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		locked, err := lockLedgerEntry(ctx, tx, school, p.StudentFeeID)
		if err != nil {
			return err
		}
		if err := locked.ApplyPayment(p.Amount, asOf); err != nil {
			return err
		}
		if err := updateLedgerBalances(ctx, tx, &locked.StudentFee); err != nil {
			return err
		}

		p.SchoolCode = school
		p.StudentID = locked.StudentID
		err = tx.QueryRow(ctx,
			`INSERT INTO fee_payments
				(school_code, student_fee_id, student_id, amount, payment_mode, reference, paid_at, recorded_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			school, p.StudentFeeID, p.StudentID, p.Amount, p.PaymentMode, p.Reference, p.PaidAt, p.RecordedBy,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		entry = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *StudentFeeRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]model.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// lockLedgerEntry reads a ledger row with a row-level lock held until the
// surrounding transaction ends. Payments and adjustment approvals both go
// through here, so they serialize on the same row.
func lockLedgerEntry(ctx context.Context, tx pgx.Tx, school model.SchoolCode, id int64) (*model.LedgerEntry, error) {
	return scanLedgerEntry(tx.QueryRow(ctx,
		`SELECT `+ledgerColumns+ledgerFrom+`
		 WHERE sf.id = $1 AND sf.school_code = $2
		 FOR UPDATE OF sf`,
		id, school,
	))
}

func updateLedgerBalances(ctx context.Context, tx pgx.Tx, f *model.StudentFee) error {
	err := tx.QueryRow(ctx,
		`UPDATE student_fees
		 SET adjustment_amount = $1, paid_amount = $2, status = $3, updated_at = NOW()
		 WHERE id = $4 AND school_code = $5
		 RETURNING updated_at`,
		f.AdjustmentAmount, f.PaidAmount, f.Status, f.ID, f.SchoolCode,
	).Scan(&f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update student fee %d: %w", f.ID, err)
	}
	return nil
}
