package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/latefee"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStructureFixture(clock string) (*memStore, *FeeStructureService) {
	store := newMemStore()
	svc := NewFeeStructureService(memStructures{store}, memLedger{store}, memFines{store}, zerolog.Nop(), fixedClock(clock))
	return store, svc
}

func tuitionRequest() model.CreateFeeStructureRequest {
	return model.CreateFeeStructureRequest{
		Name:            "Tuition Term 1",
		Component:       " Tuition ",
		ClassID:         7,
		Section:         "A",
		AcademicYear:    "2024-2025",
		Amount:          decPtr("1500"),
		LateFeeType:     latefee.TypePerDay,
		LateFeeValue:    decPtr("10"),
		GracePeriodDays: 5,
	}
}

func TestCreateStructure(t *testing.T) {
	_, svc := newStructureFixture("2024-01-10")

	s, err := svc.Create(context.Background(), schoolA, tuitionRequest())
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, "tuition", s.Component)
	assert.True(t, s.IsActive)
	assert.Equal(t, latefee.TypePerDay, s.LateFee.Type)
	assert.Equal(t, 5, s.LateFee.GracePeriodDays)
	assertDec(t, "10", s.LateFee.Value)
}

func TestCreateStructureOneActivePerScope(t *testing.T) {
	_, svc := newStructureFixture("2024-01-10")

	first, err := svc.Create(context.Background(), schoolA, tuitionRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), schoolA, tuitionRequest())
	assert.ErrorIs(t, err, ErrDuplicateActiveStructure)

	_, err = svc.Create(context.Background(), schoolB, tuitionRequest())
	assert.NoError(t, err, "other schools have their own scopes")

	_, err = svc.Deactivate(context.Background(), schoolA, first.ID)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), schoolA, tuitionRequest())
	assert.NoError(t, err)
}

func TestCreateStructurePolicyValidation(t *testing.T) {
	_, svc := newStructureFixture("2024-01-10")

	req := tuitionRequest()
	req.LateFeeValue = nil
	_, err := svc.Create(context.Background(), schoolA, req)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "late_fee_value")

	req = tuitionRequest()
	req.Amount = decPtr("-1")
	_, err = svc.Create(context.Background(), schoolA, req)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "amount")

	req = tuitionRequest()
	req.LateFeeType = ""
	req.LateFeeValue = nil
	s, err := svc.Create(context.Background(), schoolA, req)
	require.NoError(t, err)
	assert.Equal(t, latefee.TypeNone, s.LateFee.Type)
}

func TestCreateStructureFromFine(t *testing.T) {
	store, svc := newStructureFixture("2024-01-10")
	fine := &model.FeeFine{SchoolCode: schoolA, Name: "Late", FineType: model.FineTypeFixed, Value: dec("75"), ApplicableAfterDays: 3}
	require.NoError(t, memFines{store}.Create(context.Background(), fine))

	req := tuitionRequest()
	req.FineID = &fine.ID
	s, err := svc.Create(context.Background(), schoolA, req)
	require.NoError(t, err)
	assert.Equal(t, latefee.TypeFlat, s.LateFee.Type)
	assert.Equal(t, 3, s.LateFee.GracePeriodDays)
	assertDec(t, "75", s.LateFee.Value)

	store.mu.Lock()
	store.fines[fine.ID].IsActive = false
	store.mu.Unlock()
	req = tuitionRequest()
	req.Component = "library"
	req.FineID = &fine.ID
	_, err = svc.Create(context.Background(), schoolA, req)
	var inactive *ValidationError
	require.ErrorAs(t, err, &inactive)
	assert.Contains(t, inactive.Fields, "fine_id")

	missing := int64(404)
	req = tuitionRequest()
	req.Component = "transport"
	req.FineID = &missing
	_, err = svc.Create(context.Background(), schoolA, req)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAssignStructure(t *testing.T) {
	_, svc := newStructureFixture("2024-01-10")
	s, err := svc.Create(context.Background(), schoolA, tuitionRequest())
	require.NoError(t, err)

	due := day("2024-01-05")
	req := model.AssignFeeStructureRequest{
		StudentIDs:    []int64{11, 12, 11},
		BillingPeriod: "2024-T1",
		DueDate:       &due,
	}
	result, err := svc.Assign(context.Background(), schoolA, s.ID, req)
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	assert.Equal(t, 0, result.Skipped)
	for _, row := range result.Created {
		assertDec(t, "1500", row.BaseAmount)
		assert.Equal(t, 7, row.ClassID)
		assert.Equal(t, model.StudentFeeStatusOverdue, row.Status)
	}

	req.StudentIDs = []int64{11, 13}
	req.Amount = decPtr("1200")
	result, err = svc.Assign(context.Background(), schoolA, s.ID, req)
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, int64(13), result.Created[0].StudentID)
	assertDec(t, "1200", result.Created[0].BaseAmount)
}

func TestAssignInactiveOrForeignStructure(t *testing.T) {
	_, svc := newStructureFixture("2024-01-10")
	s, err := svc.Create(context.Background(), schoolA, tuitionRequest())
	require.NoError(t, err)
	due := day("2024-02-01")
	req := model.AssignFeeStructureRequest{StudentIDs: []int64{1}, BillingPeriod: "2024-T1", DueDate: &due}

	_, err = svc.Assign(context.Background(), schoolB, s.ID, req)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Deactivate(context.Background(), schoolA, s.ID)
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), schoolA, s.ID, req)
	assert.ErrorIs(t, err, ErrStructureInactive)

	got, err := svc.Get(context.Background(), schoolA, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := svc.List(context.Background(), schoolA, model.FeeStructureFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.List(context.Background(), schoolA, model.FeeStructureFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
