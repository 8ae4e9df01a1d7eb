package repository

import (
	"github.com/stemsi/feeledger-backend/internal/model"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const ledgerColumns = `sf.id, sf.school_code, sf.student_id, sf.fee_structure_id, sf.class_id, sf.section,
	sf.billing_period, sf.base_amount, sf.adjustment_amount, sf.paid_amount, sf.due_date, sf.status,
	sf.created_at, sf.updated_at,
	fs.id, fs.name, fs.component, fs.academic_year, fs.is_active,
	fs.late_fee_type, fs.late_fee_value, fs.grace_period_days, fs.late_fee_cap`

// ledgerFrom joins a ledger row to its structure. The structure must live
// under the same tenant as the row.
const ledgerFrom = ` FROM student_fees sf
	JOIN fee_structures fs ON fs.id = sf.fee_structure_id AND fs.school_code = sf.school_code`

func scanLedgerEntry(row rowScanner) (*model.LedgerEntry, error) {
	e := &model.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.SchoolCode, &e.StudentID, &e.FeeStructureID, &e.ClassID, &e.Section,
		&e.BillingPeriod, &e.BaseAmount, &e.AdjustmentAmount, &e.PaidAmount, &e.DueDate, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
		&e.Structure.ID, &e.Structure.Name, &e.Structure.Component, &e.Structure.AcademicYear, &e.Structure.IsActive,
		&e.Structure.LateFee.Type, &e.Structure.LateFee.Value, &e.Structure.LateFee.GracePeriodDays, &e.Structure.LateFee.Cap,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func statusStrings(statuses []model.StudentFeeStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
