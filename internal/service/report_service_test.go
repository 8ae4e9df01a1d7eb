package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/latefee"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportFixture(clock string, loc *time.Location) (*memStore, *ReportService) {
	store := newMemStore()
	return store, NewReportService(memReports{store}, loc, 50, zerolog.Nop(), fixedClock(clock))
}

func TestPendingByStudentRanksByTotalDue(t *testing.T) {
	store, svc := newReportFixture("2024-01-10", time.UTC)
	store.seedFee(schoolA, 1, "100", "2024-03-01")
	store.seedFee(schoolA, 2, "250", "2024-03-01")
	store.seedFee(schoolA, 3, "40", "2024-03-01")
	store.seedFee(schoolB, 4, "9999", "2024-03-01")

	totals, err := svc.PendingByStudent(context.Background(), schoolA, model.OutstandingFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, int64(2), totals[0].StudentID)
	assertDec(t, "250", totals[0].TotalDue)
	assert.Equal(t, int64(1), totals[1].StudentID)
	assertDec(t, "100", totals[1].TotalDue)
}

func TestPendingByStudentGroupsRows(t *testing.T) {
	store, svc := newReportFixture("2024-01-10", time.UTC)
	late := store.seedFee(schoolA, 1, "100", "2024-01-01")
	store.setPolicy(late, latefee.Policy{Type: latefee.TypeFlat, Value: dec("20")})
	store.seedFee(schoolA, 1, "80", "2024-02-01")
	store.seedFee(schoolA, 2, "200", "2024-02-01")

	totals, err := svc.PendingByStudent(context.Background(), schoolA, model.OutstandingFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, int64(1), totals[0].StudentID)
	assert.Equal(t, 2, totals[0].FeeCount)
	assertDec(t, "180", totals[0].BalanceDue)
	assertDec(t, "20", totals[0].LateFee)
	assertDec(t, "200", totals[0].TotalDue)
	assert.Equal(t, "2024-01-01", totals[0].EarliestDueDate.String())

	assert.Equal(t, int64(2), totals[1].StudentID, "ties break on student id")
}

func TestPendingByStudentLimit(t *testing.T) {
	_, svc := newReportFixture("2024-01-10", time.UTC)

	for _, limit := range []int{-1, MaxPendingLimit + 1} {
		_, err := svc.PendingByStudent(context.Background(), schoolA, model.OutstandingFilter{}, limit)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}

	totals, err := svc.PendingByStudent(context.Background(), schoolA, model.OutstandingFilter{}, MaxPendingLimit)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestReportsExcludeInactiveStructures(t *testing.T) {
	store, svc := newReportFixture("2024-01-10", time.UTC)
	kept := store.seedFee(schoolA, 1, "100", "2024-01-01")
	hidden := store.seedFee(schoolA, 2, "500", "2024-01-01")
	store.deactivate(hidden)

	pending, err := svc.Pending(context.Background(), schoolA, model.OutstandingFilter{})
	require.NoError(t, err)
	require.Len(t, pending.Rows, 1)
	assert.Equal(t, kept.ID, pending.Rows[0].ID)
	assertDec(t, "100", pending.Summary.TotalPending)

	overdue, err := svc.Overdue(context.Background(), schoolA, model.OutstandingFilter{})
	require.NoError(t, err)
	require.Len(t, overdue.Rows, 1)
	assert.Equal(t, kept.ID, overdue.Rows[0].ID)

	totals, err := svc.PendingByStudent(context.Background(), schoolA, model.OutstandingFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1), totals[0].StudentID)
}

func TestPendingReportSummary(t *testing.T) {
	store, svc := newReportFixture("2024-01-10", time.UTC)
	store.seedFee(schoolA, 1, "100", "2024-01-01")
	store.seedFee(schoolA, 1, "200", "2024-02-01")
	store.seedFee(schoolA, 2, "300", "2024-02-01")

	report, err := svc.Pending(context.Background(), schoolA, model.OutstandingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.Count)
	assert.Equal(t, 2, report.Summary.StudentCount)
	assert.Equal(t, 1, report.Summary.OverdueCount)
	assertDec(t, "600", report.Summary.TotalPending)
}

func TestOverdueReportAverage(t *testing.T) {
	store, svc := newReportFixture("2024-01-10", time.UTC)
	store.seedFee(schoolA, 1, "100", "2024-01-01")
	store.seedFee(schoolA, 2, "50", "2024-01-08")
	store.seedFee(schoolA, 3, "70", "2024-01-10")
	store.seedFee(schoolA, 4, "90", "2024-01-20")

	report, err := svc.Overdue(context.Background(), schoolA, model.OutstandingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Count)
	assert.Equal(t, 2, report.Summary.StudentCount)
	assertDec(t, "150", report.Summary.TotalOverdue)
	assertDec(t, "5.5", report.Summary.AverageDaysOverdue)
}

func TestReportsSurfaceStoreFailure(t *testing.T) {
	store, svc := newReportFixture("2024-01-10", time.UTC)
	store.seedFee(schoolA, 1, "100", "2024-01-01")
	store.failReads = true

	_, err := svc.Pending(context.Background(), schoolA, model.OutstandingFilter{})
	assert.ErrorIs(t, err, errStoreDown)
	_, err = svc.Overdue(context.Background(), schoolA, model.OutstandingFilter{})
	assert.ErrorIs(t, err, errStoreDown)
	_, err = svc.PendingByStudent(context.Background(), schoolA, model.OutstandingFilter{}, 10)
	assert.ErrorIs(t, err, errStoreDown)
	_, err = svc.DailyCollection(context.Background(), schoolA, day("2024-01-10"))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestDailyCollectionUsesSchoolDay(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	store, svc := newReportFixture("2024-01-10", wib)
	ledger := NewLedgerService(memLedger{store}, zerolog.Nop(), fixedClock("2024-01-10"))
	first := store.seedFee(schoolA, 1, "1000", "2024-02-01")
	second := store.seedFee(schoolA, 2, "1000", "2024-02-01")

	pay := func(feeID int64, amount string, mode model.PaymentMode, at time.Time) {
		req := model.RecordPaymentRequest{Amount: decPtr(amount), PaymentMode: mode, PaidAt: &at}
		_, err := ledger.RecordPayment(context.Background(), schoolA, feeID, "cashier", req)
		require.NoError(t, err)
	}
	pay(first.ID, "100", model.PaymentModeCash, time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC))
	pay(first.ID, "50", model.PaymentModeUPI, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	pay(second.ID, "200", model.PaymentModeCash, time.Date(2024, 1, 10, 12, 0, 0, 0, wib))
	pay(second.ID, "300", model.PaymentModeCash, time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC))

	report, err := svc.DailyCollection(context.Background(), schoolA, day("2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", report.Date)
	assert.Equal(t, "WIB", report.Timezone)
	assert.Equal(t, 3, report.Summary.PaymentCount)
	assert.Equal(t, 2, report.Summary.StudentCount)
	assertDec(t, "350", report.Summary.TotalCollected)
	assertDec(t, "300", report.Summary.ByPaymentMode[model.PaymentModeCash])
	assertDec(t, "50", report.Summary.ByPaymentMode[model.PaymentModeUPI])
	assertDec(t, "350", report.Summary.ByClass[7])
}

func TestDailyCollectionEmptyDay(t *testing.T) {
	_, svc := newReportFixture("2024-01-10", time.UTC)

	report, err := svc.DailyCollection(context.Background(), schoolA, day("2024-01-10"))
	require.NoError(t, err)
	assert.Empty(t, report.Collections)
	assertDec(t, "0", report.Summary.TotalCollected)
	assert.Empty(t, report.Summary.ByPaymentMode)
}
