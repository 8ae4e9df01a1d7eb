package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// memStore is an in-memory stand-in for the pgx repositories. One mutex
// plays the role of the row locks: every mutation runs fully under it.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	structures  map[int64]*model.FeeStructure
	fees        map[int64]*model.StudentFee
	adjustments map[uuid.UUID]*model.Adjustment
	fines       map[int64]*model.FeeFine
	payments    []model.FeePayment

	failLedgerWrite bool
	failReads       bool
}

var errStoreDown = errors.New("connection refused")

func newMemStore() *memStore {
	return &memStore{
		structures:  make(map[int64]*model.FeeStructure),
		fees:        make(map[int64]*model.StudentFee),
		adjustments: make(map[uuid.UUID]*model.Adjustment),
		fines:       make(map[int64]*model.FeeFine),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) entry(f *model.StudentFee) model.LedgerEntry {
	s := m.structures[f.FeeStructureID]
	return model.LedgerEntry{
		StudentFee: *f,
		Structure: model.StructureRef{
			ID:           s.ID,
			Name:         s.Name,
			Component:    s.Component,
			AcademicYear: s.AcademicYear,
			IsActive:     s.IsActive,
			LateFee:      s.LateFee,
		},
	}
}

// fee structures

type memStructures struct{ *memStore }

func (m memStructures) Create(_ context.Context, s *model.FeeStructure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	s.IsActive = true
	cp := *s
	m.structures[s.ID] = &cp
	return nil
}

func (m memStructures) GetByID(_ context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.structures[id]
	if !ok || s.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m memStructures) List(_ context.Context, school model.SchoolCode, filter model.FeeStructureFilter) ([]model.FeeStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.FeeStructure{}
	for _, s := range m.structures {
		if s.SchoolCode != school || (!filter.IncludeInactive && !s.IsActive) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memStructures) HasActiveScope(_ context.Context, school model.SchoolCode, classID int, section, academicYear, component string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.structures {
		if s.SchoolCode == school && s.IsActive && s.ClassID == classID &&
			s.Section == section && s.AcademicYear == academicYear && s.Component == component {
			return true, nil
		}
	}
	return false, nil
}

func (m memStructures) Deactivate(_ context.Context, school model.SchoolCode, id int64) (*model.FeeStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.structures[id]
	if !ok || s.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	s.IsActive = false
	cp := *s
	return &cp, nil
}

// ledger

type memLedger struct{ *memStore }

func (m memLedger) CreateBatch(_ context.Context, school model.SchoolCode, fees []model.StudentFee) ([]model.StudentFee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := []model.StudentFee{}
	for _, f := range fees {
		dup := false
		for _, existing := range m.fees {
			if existing.SchoolCode == school && existing.StudentID == f.StudentID &&
				existing.FeeStructureID == f.FeeStructureID && existing.BillingPeriod == f.BillingPeriod {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		f.ID = m.id()
		f.SchoolCode = school
		cp := f
		m.fees[f.ID] = &cp
		created = append(created, f)
	}
	return created, nil
}

func (m memLedger) ListByStudent(_ context.Context, school model.SchoolCode, studentID int64, filter model.LedgerFilter) ([]model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	out := []model.LedgerEntry{}
	for _, f := range m.sortedFees() {
		s := m.structures[f.FeeStructureID]
		if f.SchoolCode != school || f.StudentID != studentID || !s.IsActive {
			continue
		}
		if filter.AcademicYear != "" && s.AcademicYear != filter.AcademicYear {
			continue
		}
		out = append(out, m.entry(f))
	}
	return out, nil
}

func (m memLedger) GetEntry(_ context.Context, school model.SchoolCode, id int64) (*model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fees[id]
	if !ok || f.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	e := m.entry(f)
	return &e, nil
}

func (m memLedger) ApplyPayment(_ context.Context, school model.SchoolCode, p *model.FeePayment, asOf time.Time) (*model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fees[p.StudentFeeID]
	if !ok || f.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	locked := *f
	if err := locked.ApplyPayment(p.Amount, asOf); err != nil {
		return nil, err
	}
	*f = locked
	p.ID = m.id()
	p.SchoolCode = school
	p.StudentID = f.StudentID
	m.payments = append(m.payments, *p)
	e := m.entry(f)
	return &e, nil
}

func (m *memStore) sortedFees() []*model.StudentFee {
	out := make([]*model.StudentFee, 0, len(m.fees))
	for _, f := range m.fees {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// adjustments

type memAdjustments struct{ *memStore }

func (m memAdjustments) Create(_ context.Context, a *model.Adjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fees[a.StudentFeeID]
	if !ok || f.SchoolCode != a.SchoolCode {
		return pgx.ErrNoRows
	}
	a.ID = uuid.New()
	a.Status = model.AdjustmentStatusPending
	cp := *a
	m.adjustments[a.ID] = &cp
	return nil
}

func (m memAdjustments) GetByID(_ context.Context, school model.SchoolCode, id uuid.UUID) (*model.Adjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.adjustments[id]
	if !ok || a.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m memAdjustments) List(_ context.Context, school model.SchoolCode, filter model.AdjustmentFilter) ([]model.Adjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Adjustment{}
	for _, a := range m.adjustments {
		if a.SchoolCode != school {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.StudentFeeID != nil && a.StudentFeeID != *filter.StudentFeeID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m memAdjustments) Approve(_ context.Context, school model.SchoolCode, id uuid.UUID, approver string, at time.Time) (*model.Adjustment, *model.StudentFee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.adjustments[id]
	if !ok || stored.SchoolCode != school {
		return nil, nil, pgx.ErrNoRows
	}
	adj := *stored
	if err := adj.Approve(approver, at); err != nil {
		return nil, nil, err
	}
	f, ok := m.fees[adj.StudentFeeID]
	if !ok || f.SchoolCode != school {
		return nil, nil, model.ErrLedgerRowMissing
	}
	if m.failLedgerWrite {
		return nil, nil, errStoreDown
	}
	fee := *f
	fee.ApplyAdjustment(adj.Amount, at)

	*stored = adj
	*f = fee
	return &adj, &fee, nil
}

func (m memAdjustments) Reject(_ context.Context, school model.SchoolCode, id uuid.UUID, rejector, reason string, at time.Time) (*model.Adjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.adjustments[id]
	if !ok || stored.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	adj := *stored
	if err := adj.Reject(rejector, reason, at); err != nil {
		return nil, err
	}
	*stored = adj
	return &adj, nil
}

// fines

type memFines struct{ *memStore }

func (m memFines) List(_ context.Context, school model.SchoolCode) ([]model.FeeFine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	out := []model.FeeFine{}
	for _, f := range m.fines {
		if f.SchoolCode == school {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memFines) GetByID(_ context.Context, school model.SchoolCode, id int64) (*model.FeeFine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fines[id]
	if !ok || f.SchoolCode != school {
		return nil, pgx.ErrNoRows
	}
	cp := *f
	return &cp, nil
}

func (m memFines) Create(_ context.Context, f *model.FeeFine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.id()
	f.IsActive = true
	cp := *f
	m.fines[f.ID] = &cp
	return nil
}

// reports

type memReports struct{ *memStore }

func (m memReports) Outstanding(_ context.Context, school model.SchoolCode, filter model.OutstandingFilter) ([]model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	out := []model.LedgerEntry{}
	for _, f := range m.sortedFees() {
		s := m.structures[f.FeeStructureID]
		if f.SchoolCode != school || !s.IsActive || f.Status == model.StudentFeeStatusPaid {
			continue
		}
		if filter.ClassID != nil && f.ClassID != *filter.ClassID {
			continue
		}
		if filter.DueBefore != nil && !f.DueDate.Before(model.NewDate(*filter.DueBefore).Time) {
			continue
		}
		out = append(out, m.entry(f))
	}
	return out, nil
}

func (m memReports) Collections(_ context.Context, school model.SchoolCode, from, to time.Time) ([]model.CollectionLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errStoreDown
	}
	out := []model.CollectionLine{}
	for _, p := range m.payments {
		if p.SchoolCode != school || p.PaidAt.Before(from) || !p.PaidAt.Before(to) {
			continue
		}
		f := m.fees[p.StudentFeeID]
		s := m.structures[f.FeeStructureID]
		if !s.IsActive {
			continue
		}
		out = append(out, model.CollectionLine{
			PaymentID:     p.ID,
			StudentFeeID:  p.StudentFeeID,
			StudentID:     p.StudentID,
			ClassID:       f.ClassID,
			Section:       f.Section,
			FeeName:       s.Name,
			Amount:        p.Amount,
			PaymentMode:   p.PaymentMode,
			Reference:     p.Reference,
			PaidAt:        p.PaidAt,
			RecordedBy:    p.RecordedBy,
			BillingPeriod: f.BillingPeriod,
		})
	}
	return out, nil
}

// fixtures

const (
	schoolA model.SchoolCode = "SCH-A"
	schoolB model.SchoolCode = "SCH-B"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedClock(s string) func() time.Time {
	t := day(s).Time.Add(10 * time.Hour)
	return func() time.Time { return t }
}

// seedFee adds an active structure and one ledger row for a student.
func (m *memStore) seedFee(school model.SchoolCode, studentID int64, base string, due string) *model.StudentFee {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.FeeStructure{
		ID:           m.id(),
		SchoolCode:   school,
		Name:         "Tuition",
		Component:    "tuition",
		ClassID:      7,
		Section:      "A",
		AcademicYear: "2024-2025",
		Amount:       dec(base),
		IsActive:     true,
	}
	m.structures[s.ID] = s
	f := &model.StudentFee{
		ID:               m.id(),
		SchoolCode:       school,
		StudentID:        studentID,
		FeeStructureID:   s.ID,
		ClassID:          s.ClassID,
		Section:          s.Section,
		BillingPeriod:    "2024-01",
		BaseAmount:       dec(base),
		AdjustmentAmount: decimal.Zero,
		PaidAmount:       decimal.Zero,
		DueDate:          day(due),
		Status:           model.StudentFeeStatusPending,
	}
	m.fees[f.ID] = f
	return f
}

func (m *memStore) fee(id int64) model.StudentFee {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.fees[id]
}
