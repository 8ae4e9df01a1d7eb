package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// Service contracts the handlers depend on. The concrete services live in
// internal/service.

type FineCatalog interface {
	List(ctx context.Context, school model.SchoolCode) ([]model.FeeFine, error)
	Create(ctx context.Context, school model.SchoolCode, req model.CreateFeeFineRequest) (*model.FeeFine, error)
}

type StructureCatalog interface {
	Create(ctx context.Context, school model.SchoolCode, req model.CreateFeeStructureRequest) (*model.FeeStructure, error)
	List(ctx context.Context, school model.SchoolCode, filter model.FeeStructureFilter) ([]model.FeeStructure, error)
	Get(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error)
	Deactivate(ctx context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error)
	Assign(ctx context.Context, school model.SchoolCode, id int64, req model.AssignFeeStructureRequest) (*model.AssignResult, error)
}

type Ledger interface {
	StudentFees(ctx context.Context, school model.SchoolCode, studentID int64, filter model.LedgerFilter) (*model.StudentLedger, error)
	GetFee(ctx context.Context, school model.SchoolCode, id int64) (*model.LedgerLine, error)
	RecordPayment(ctx context.Context, school model.SchoolCode, feeID int64, recorder string, req model.RecordPaymentRequest) (*model.PaymentReceipt, error)
}

type AdjustmentWorkflow interface {
	Propose(ctx context.Context, school model.SchoolCode, proposer string, req model.ProposeAdjustmentRequest) (*model.Adjustment, error)
	Get(ctx context.Context, school model.SchoolCode, id uuid.UUID) (*model.Adjustment, error)
	List(ctx context.Context, school model.SchoolCode, filter model.AdjustmentFilter) ([]model.Adjustment, error)
	Approve(ctx context.Context, school model.SchoolCode, id uuid.UUID, approver string) (*model.ApprovalResult, error)
	Reject(ctx context.Context, school model.SchoolCode, id uuid.UUID, rejector, reason string) (*model.Adjustment, error)
}

type Reports interface {
	Pending(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter) (*model.PendingReport, error)
	Overdue(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter) (*model.OverdueReport, error)
	PendingByStudent(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter, limit int) ([]model.StudentPendingTotal, error)
	DailyCollection(ctx context.Context, school model.SchoolCode, day model.Date) (*model.DailyCollectionReport, error)
}
