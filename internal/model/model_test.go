package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/latefee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(s string) time.Time { return date(s).Add(9 * time.Hour) }

func newFee() *StudentFee {
	return &StudentFee{
		BaseAmount:       dec("1000"),
		AdjustmentAmount: decimal.Zero,
		PaidAmount:       decimal.Zero,
		DueDate:          date("2024-01-01"),
		Status:           StudentFeeStatusPending,
	}
}

func TestStudentFeeStatusTransitions(t *testing.T) {
	fee := newFee()
	assert.Equal(t, StudentFeeStatusPending, fee.ResolveStatus(at("2024-01-01")))
	assert.Equal(t, StudentFeeStatusOverdue, fee.ResolveStatus(at("2024-01-02")))

	require.NoError(t, fee.ApplyPayment(dec("300"), at("2024-01-02")))
	assert.Equal(t, StudentFeeStatusPartial, fee.Status)

	require.NoError(t, fee.ApplyPayment(dec("700"), at("2024-01-03")))
	assert.Equal(t, StudentFeeStatusPaid, fee.Status)
	assert.True(t, fee.BalanceDue().IsZero())
}

func TestApplyPaymentRejectsBadAmounts(t *testing.T) {
	fee := newFee()
	assert.ErrorIs(t, fee.ApplyPayment(decimal.Zero, at("2024-01-01")), ErrInvalidAmount)
	assert.ErrorIs(t, fee.ApplyPayment(dec("-5"), at("2024-01-01")), ErrInvalidAmount)
	assert.ErrorIs(t, fee.ApplyPayment(dec("1000.01"), at("2024-01-01")), ErrOverpayment)
	assert.True(t, fee.PaidAmount.IsZero())
}

func TestDiscountCanSettleRow(t *testing.T) {
	fee := newFee()
	require.NoError(t, fee.ApplyPayment(dec("900"), at("2024-01-01")))
	fee.ApplyAdjustment(dec("-100"), at("2024-01-05"))

	assert.Equal(t, StudentFeeStatusPaid, fee.Status)
	assert.True(t, dec("-100").Equal(fee.AdjustmentAmount))
}

func TestNewLedgerLine(t *testing.T) {
	entry := LedgerEntry{
		StudentFee: *newFee(),
		Structure: StructureRef{
			IsActive: true,
			LateFee:  latefee.Policy{Type: latefee.TypePerDay, Value: dec("10"), GracePeriodDays: 5},
		},
	}
	entry.AdjustmentAmount = dec("-100")
	entry.PaidAmount = dec("200")

	line := NewLedgerLine(entry, at("2024-01-10"))
	assert.True(t, dec("700").Equal(line.BalanceDue), line.BalanceDue.String())
	assert.True(t, dec("40").Equal(line.LateFee), line.LateFee.String())
	assert.True(t, dec("740").Equal(line.TotalDue), line.TotalDue.String())
	assert.Equal(t, 9, line.DaysOverdue)
	assert.True(t, line.IsOverdue)
}

func TestNewLedgerLineStatusAsOfRead(t *testing.T) {
	entry := LedgerEntry{StudentFee: *newFee()}
	require.Equal(t, StudentFeeStatusPending, entry.Status)

	assert.Equal(t, StudentFeeStatusPending, NewLedgerLine(entry, at("2024-01-01")).Status)
	assert.Equal(t, StudentFeeStatusOverdue, NewLedgerLine(entry, at("2024-01-10")).Status)
	assert.Equal(t, StudentFeeStatusPending, entry.Status)
}

func TestNewLedgerLineSettledRowAccruesNothing(t *testing.T) {
	entry := LedgerEntry{
		StudentFee: *newFee(),
		Structure:  StructureRef{LateFee: latefee.Policy{Type: latefee.TypeFlat, Value: dec("50")}},
	}
	entry.PaidAmount = dec("1000")

	line := NewLedgerLine(entry, at("2024-03-01"))
	assert.True(t, line.LateFee.IsZero())
	assert.True(t, line.TotalDue.IsZero())
	assert.False(t, line.IsOverdue)
	assert.Zero(t, line.DaysOverdue)
}

func TestAdjustmentTransitions(t *testing.T) {
	now := at("2024-02-01")

	a := &Adjustment{Status: AdjustmentStatusPending}
	assert.ErrorIs(t, a.Approve("", now), ErrApproverRequired)
	assert.Equal(t, AdjustmentStatusPending, a.Status)

	require.NoError(t, a.Approve("bursar-1", now))
	assert.Equal(t, AdjustmentStatusApproved, a.Status)
	require.NotNil(t, a.ApprovedBy)
	assert.Equal(t, "bursar-1", *a.ApprovedBy)

	assert.ErrorIs(t, a.Approve("bursar-2", now), ErrAdjustmentNotPending)
	assert.ErrorIs(t, a.Reject("bursar-2", "late", now), ErrAdjustmentNotPending)
	assert.Equal(t, "bursar-1", *a.ApprovedBy)

	r := &Adjustment{Status: AdjustmentStatusPending}
	require.NoError(t, r.Reject("bursar-1", "duplicate request", now))
	assert.Equal(t, AdjustmentStatusRejected, r.Status)
	require.NotNil(t, r.RejectionReason)
	assert.ErrorIs(t, r.Approve("bursar-1", now), ErrAdjustmentNotPending)
}

func TestAdjustmentSign(t *testing.T) {
	cases := []struct {
		typ    AdjustmentType
		amount string
		ok     bool
	}{
		{AdjustmentTypeDiscount, "-50", true},
		{AdjustmentTypeDiscount, "50", false},
		{AdjustmentTypeFine, "25", true},
		{AdjustmentTypeFine, "-25", false},
		{AdjustmentTypeCorrection, "-10", true},
		{AdjustmentTypeCorrection, "10", true},
		{AdjustmentTypeCorrection, "0", false},
	}
	for _, tc := range cases {
		a := &Adjustment{Type: tc.typ, Amount: dec(tc.amount)}
		err := a.ValidateSign()
		if tc.ok {
			assert.NoError(t, err, "%s %s", tc.typ, tc.amount)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, "%s %s", tc.typ, tc.amount)
		}
	}
}

func TestFineDailyPolicyCapped(t *testing.T) {
	fine := &FeeFine{
		FineType:            FineTypeDaily,
		Value:               dec("5"),
		ApplicableAfterDays: 2,
		MaxFineAmount:       decimal.NewNullDecimal(dec("20")),
	}
	fee := newFee()

	assert.True(t, fine.AmountFor(fee, at("2024-01-03")).IsZero())
	assert.True(t, dec("10").Equal(fine.AmountFor(fee, at("2024-01-05"))))
	assert.True(t, dec("20").Equal(fine.AmountFor(fee, at("2024-02-01"))))
}

func TestDateJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Due Date `json:"due"`
	}{Due: date("2024-07-15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-07-15"}`, string(raw))

	var back struct {
		Due Date `json:"due"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"due":"15/07/2024"}`), &back))
}

func TestParseSchoolCode(t *testing.T) {
	code, err := ParseSchoolCode("  SCH-01 ")
	require.NoError(t, err)
	assert.Equal(t, SchoolCode("SCH-01"), code)

	for _, bad := range []string{"", "   ", "has space", "semi;colon", "abcdefghijklmnopqrstuvwxyz0123456789"} {
		_, err := ParseSchoolCode(bad)
		assert.ErrorIs(t, err, ErrInvalidSchoolCode, bad)
	}
}
