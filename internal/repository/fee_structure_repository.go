package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feeledger-backend/internal/model"
)

const structureColumns = `id, school_code, name, component, class_id, section, academic_year, amount,
	late_fee_type, late_fee_value, grace_period_days, late_fee_cap,
	is_active, deactivated_at, created_at, updated_at`

// FeeStructureRepository handles fee structure data access.
type FeeStructureRepository struct {
	pool *pgxpool.Pool
}

// NewFeeStructureRepository creates a new FeeStructureRepository.
func NewFeeStructureRepository(pool *pgxpool.Pool) *FeeStructureRepository {
	return &FeeStructureRepository{pool: pool}
}

func scanStructure(row rowScanner) (*model.FeeStructure, error) {
	s := &model.FeeStructure{}
	err := row.Scan(
		&s.ID, &s.SchoolCode, &s.Name, &s.Component, &s.ClassID, &s.Section, &s.AcademicYear, &s.Amount,
		&s.LateFee.Type, &s.LateFee.Value, &s.LateFee.GracePeriodDays, &s.LateFee.Cap,
		&s.IsActive, &s.DeactivatedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new active structure.
func (r *FeeStructureRepository) Create(ctx context.Context, s *model.FeeStructure) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO fee_structures
			(school_code, name, component, class_id, section, academic_year, amount,
			 late_fee_type, late_fee_value, grace_period_days, late_fee_cap, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		s.SchoolCode, s.Name, s.Component, s.ClassID, s.Section, s.AcademicYear, s.Amount,
		s.LateFee.Type, s.LateFee.Value, s.LateFee.GracePeriodDays, s.LateFee.Cap,
	).Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a structure of the given school, active or not.
func (r *FeeStructureRepository) GetByID(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error) {
	return scanStructure(r.pool.QueryRow(ctx,
		`SELECT `+structureColumns+` FROM fee_structures WHERE id = $1 AND school_code = $2`,
		id, school,
	))
}

// List retrieves a school's structures, active only unless asked otherwise.
func (r *FeeStructureRepository) List(ctx context.Context, school model.SchoolCode, filter model.FeeStructureFilter) ([]model.FeeStructure, error) {
	query := `SELECT ` + structureColumns + ` FROM fee_structures WHERE school_code = $1`
	args := []interface{}{school}

	if !filter.IncludeInactive {
		query += ` AND is_active`
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		query += ` AND academic_year = $` + strconv.Itoa(len(args))
	}
	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		query += ` AND class_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY academic_year DESC, class_id, section, component, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	structures := []model.FeeStructure{}
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, err
		}
		structures = append(structures, *s)
	}
	return structures, rows.Err()
}

// HasActiveScope reports whether an active structure already bills the scope.
func (r *FeeStructureRepository) HasActiveScope(ctx context.Context, school model.SchoolCode, classID int, section, academicYear, component string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM fee_structures
			WHERE school_code = $1 AND class_id = $2 AND section = $3
			  AND academic_year = $4 AND component = $5 AND is_active
		 )`,
		school, classID, section, academicYear, component,
	).Scan(&exists)
	return exists, err
}

// Deactivate flags a structure inactive. Ledger rows are left untouched.
// Deactivating an inactive structure keeps its original deactivation time.
func (r *FeeStructureRepository) Deactivate(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error) {
	return scanStructure(r.pool.QueryRow(ctx,
		`UPDATE fee_structures
		 SET is_active = FALSE,
		     deactivated_at = COALESCE(deactivated_at, NOW()),
		     updated_at = CASE WHEN is_active THEN NOW() ELSE updated_at END
		 WHERE id = $1 AND school_code = $2
		 RETURNING `+structureColumns,
		id, school,
	))
}
