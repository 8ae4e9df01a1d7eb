package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// Storage contracts consumed by the services. The pgx repositories
// implement them; tests use in-memory fakes. Not-found is signalled with
// pgx.ErrNoRows. Every method takes the school code explicitly.

type FeeStructureStore interface {
	Create(ctx context.Context, s *model.FeeStructure) error
	GetByID(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error)
	List(ctx context.Context, school model.SchoolCode, filter model.FeeStructureFilter) ([]model.FeeStructure, error)
	HasActiveScope(ctx context.Context, school model.SchoolCode, classID int, section, academicYear, component string) (bool, error)
	Deactivate(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error)
}

type LedgerStore interface {
	CreateBatch(ctx context.Context, school model.SchoolCode, fees []model.StudentFee) ([]model.StudentFee, error)
	ListByStudent(ctx context.Context, school model.SchoolCode, studentID int64, filter model.LedgerFilter) ([]model.LedgerEntry, error)
	GetEntry(ctx context.Context, school model.SchoolCode, id int64) (*model.LedgerEntry, error)
	ApplyPayment(ctx context.Context, school model.SchoolCode, p *model.FeePayment, asOf time.Time) (*model.LedgerEntry, error)
}

type AdjustmentStore interface {
	Create(ctx context.Context, a *model.Adjustment) error
	GetByID(ctx context.Context, school model.SchoolCode, id uuid.UUID) (*model.Adjustment, error)
	List(ctx context.Context, school model.SchoolCode, filter model.AdjustmentFilter) ([]model.Adjustment, error)
	Approve(ctx context.Context, school model.SchoolCode, id uuid.UUID, approver string, at time.Time) (*model.Adjustment, *model.StudentFee, error)
	Reject(ctx context.Context, school model.SchoolCode, id uuid.UUID, rejector, reason string, at time.Time) (*model.Adjustment, error)
}

type FeeFineStore interface {
	List(ctx context.Context, school model.SchoolCode) ([]model.FeeFine, error)
	GetByID(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeFine, error)
	Create(ctx context.Context, f *model.FeeFine) error
}

type FineCatalogCache interface {
	Get(ctx context.Context, school model.SchoolCode) ([]model.FeeFine, bool, error)
	Set(ctx context.Context, school model.SchoolCode, fines []model.FeeFine) error
	Invalidate(ctx context.Context, school model.SchoolCode) error
}

type ReportStore interface {
	Outstanding(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter) ([]model.LedgerEntry, error)
	Collections(ctx context.Context, school model.SchoolCode, from, to time.Time) ([]model.CollectionLine, error)
}

// SchoolClock returns the current time in the school's zone, so calendar
// comparisons (days late, today's collections) use the school's dates.
func SchoolClock(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Now().In(loc) }
}
