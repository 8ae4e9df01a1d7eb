package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feeledger-backend/internal/model"
)

const fineColumns = `id, school_code, name, fine_type, value, applicable_after_days, max_fine_amount,
	is_active, created_at, updated_at`

// FeeFineRepository handles the fee fine catalog.
type FeeFineRepository struct {
	pool *pgxpool.Pool
}

// NewFeeFineRepository creates a new FeeFineRepository.
func NewFeeFineRepository(pool *pgxpool.Pool) *FeeFineRepository {
	return &FeeFineRepository{pool: pool}
}

func scanFine(row rowScanner) (*model.FeeFine, error) {
	f := &model.FeeFine{}
	err := row.Scan(
		&f.ID, &f.SchoolCode, &f.Name, &f.FineType, &f.Value, &f.ApplicableAfterDays, &f.MaxFineAmount,
		&f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// List retrieves a school's fine catalog.
func (r *FeeFineRepository) List(ctx context.Context, school model.SchoolCode) ([]model.FeeFine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fineColumns+` FROM fee_fines WHERE school_code = $1 ORDER BY name, id`,
		school,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fines := []model.FeeFine{}
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, *f)
	}
	return fines, rows.Err()
}

// GetByID retrieves a fine of the given school.
func (r *FeeFineRepository) GetByID(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeFine, error) {
	return scanFine(r.pool.QueryRow(ctx,
		`SELECT `+fineColumns+` FROM fee_fines WHERE id = $1 AND school_code = $2`,
		id, school,
	))
}

// Create inserts a catalog fine.
func (r *FeeFineRepository) Create(ctx context.Context, f *model.FeeFine) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO fee_fines (school_code, name, fine_type, value, applicable_after_days, max_fine_amount, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		f.SchoolCode, f.Name, f.FineType, f.Value, f.ApplicableAfterDays, f.MaxFineAmount,
	).Scan(&f.ID, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
}
