package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// ReportRepository reads the raw rows behind aggregate reports. Derived
// amounts are computed by the caller, never in SQL, so reports and ledger
// reads share one calculation.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Outstanding returns a school's ledger rows in an outstanding status under
// active structures.
func (r *ReportRepository) Outstanding(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter) ([]model.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ledgerFrom + `
		WHERE sf.school_code = $1 AND fs.is_active AND sf.status = ANY($2)`
	args := []interface{}{school, statusStrings(model.OutstandingStatuses)}

	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		query += ` AND sf.class_id = $` + strconv.Itoa(len(args))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		query += ` AND sf.section = $` + strconv.Itoa(len(args))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		query += ` AND fs.academic_year = $` + strconv.Itoa(len(args))
	}
	if filter.DueFrom != nil {
		args = append(args, model.NewDate(*filter.DueFrom))
		query += ` AND sf.due_date >= $` + strconv.Itoa(len(args))
	}
	if filter.DueTo != nil {
		args = append(args, model.NewDate(*filter.DueTo))
		query += ` AND sf.due_date <= $` + strconv.Itoa(len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, model.NewDate(*filter.DueBefore))
		query += ` AND sf.due_date < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY sf.due_date, sf.student_id, sf.id`

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

// Collections returns payment events with paid_at in [from, to) for rows
// under active structures.
func (r *ReportRepository) Collections(ctx context.Context, school model.SchoolCode, from, to time.Time) ([]model.CollectionLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.student_fee_id, p.student_id, sf.class_id, sf.section, fs.name,
		        p.amount, p.payment_mode, p.reference, p.paid_at, p.recorded_by, sf.billing_period
		 FROM fee_payments p
		 JOIN student_fees sf ON sf.id = p.student_fee_id AND sf.school_code = p.school_code
		 JOIN fee_structures fs ON fs.id = sf.fee_structure_id AND fs.school_code = sf.school_code
		 WHERE p.school_code = $1 AND fs.is_active AND p.paid_at >= $2 AND p.paid_at < $3
		 ORDER BY p.paid_at, p.id`,
		school, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []model.CollectionLine{}
	for rows.Next() {
		var l model.CollectionLine
		if err := rows.Scan(
			&l.PaymentID, &l.StudentFeeID, &l.StudentID, &l.ClassID, &l.Section, &l.FeeName,
			&l.Amount, &l.PaymentMode, &l.Reference, &l.PaidAt, &l.RecordedBy, &l.BillingPeriod,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
