package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// ReportService builds the dashboard aggregates. Every report reads only
// rows under active structures and computes amounts through
// model.NewLedgerLine. A failed query is returned as an error, never as
// an empty report.
type ReportService struct {
	reports      ReportStore
	loc          *time.Location
	log          zerolog.Logger
	now          func() time.Time
	defaultLimit int
}

// NewReportService creates a new ReportService. loc defines the school's
// calendar day for collections; defaultLimit applies when the pending
// aggregate is requested without a limit.
func NewReportService(reports ReportStore, loc *time.Location, defaultLimit int, log zerolog.Logger, now func() time.Time) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if defaultLimit <= 0 || defaultLimit > MaxPendingLimit {
		defaultLimit = 50
	}
	return &ReportService{
		reports:      reports,
		loc:          loc,
		log:          log.With().Str("component", "report_service").Logger(),
		now:          now,
		defaultLimit: defaultLimit,
	}
}

// Pending lists every outstanding row matching the filter.
func (s *ReportService) Pending(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter) (*model.PendingReport, error) {
	lines, err := s.outstanding(ctx, "pending_report", school, filter)
	if err != nil {
		return nil, err
	}

	report := &model.PendingReport{
		Rows: lines,
		Summary: model.PendingSummary{
			TotalPending: decimal.Zero,
			TotalLateFee: decimal.Zero,
			Count:        len(lines),
		},
	}
	students := make(map[int64]struct{})
	for _, l := range lines {
		report.Summary.TotalPending = report.Summary.TotalPending.Add(l.BalanceDue)
		report.Summary.TotalLateFee = report.Summary.TotalLateFee.Add(l.LateFee)
		if l.IsOverdue {
			report.Summary.OverdueCount++
		}
		students[l.StudentID] = struct{}{}
	}
	report.Summary.StudentCount = len(students)
	return report, nil
}

// Overdue lists outstanding rows whose due date is before today.
func (s *ReportService) Overdue(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter) (*model.OverdueReport, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	filter.DueBefore = &today

	lines, err := s.outstanding(ctx, "overdue_report", school, filter)
	if err != nil {
		return nil, err
	}

	report := &model.OverdueReport{
		Rows: make([]model.LedgerLine, 0, len(lines)),
		Summary: model.OverdueSummary{
			TotalOverdue:       decimal.Zero,
			TotalLateFee:       decimal.Zero,
			AverageDaysOverdue: decimal.Zero,
		},
	}
	students := make(map[int64]struct{})
	totalDays := 0
	for _, l := range lines {
		if !l.IsOverdue {
			continue
		}
		report.Rows = append(report.Rows, l)
		report.Summary.TotalOverdue = report.Summary.TotalOverdue.Add(l.BalanceDue)
		report.Summary.TotalLateFee = report.Summary.TotalLateFee.Add(l.LateFee)
		students[l.StudentID] = struct{}{}
		totalDays += l.DaysOverdue
	}
	report.Summary.Count = len(report.Rows)
	report.Summary.StudentCount = len(students)
	if report.Summary.Count > 0 {
		report.Summary.AverageDaysOverdue = decimal.NewFromInt(int64(totalDays)).
			Div(decimal.NewFromInt(int64(report.Summary.Count))).
			Round(2)
	}
	return report, nil
}

// PendingByStudent groups outstanding rows by student and returns the
// students owing the most, ordered by total due descending then student
// id. limit 0 selects the configured default.
func (s *ReportService) PendingByStudent(ctx context.Context, school model.SchoolCode, filter model.OutstandingFilter, limit int) ([]model.StudentPendingTotal, error) {
	switch {
	case limit == 0:
		limit = s.defaultLimit
	case limit < 0, limit > MaxPendingLimit:
		return nil, ErrInvalidLimit
	}

	lines, err := s.outstanding(ctx, "pending_by_student", school, filter)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int64]*model.StudentPendingTotal)
	for _, l := range lines {
		t, ok := byStudent[l.StudentID]
		if !ok {
			t = &model.StudentPendingTotal{
				StudentID:       l.StudentID,
				ClassID:         l.ClassID,
				Section:         l.Section,
				BalanceDue:      decimal.Zero,
				LateFee:         decimal.Zero,
				TotalDue:        decimal.Zero,
				EarliestDueDate: l.DueDate,
			}
			byStudent[l.StudentID] = t
		}
		t.FeeCount++
		t.BalanceDue = t.BalanceDue.Add(l.BalanceDue)
		t.LateFee = t.LateFee.Add(l.LateFee)
		t.TotalDue = t.TotalDue.Add(l.TotalDue)
		if l.DueDate.Before(t.EarliestDueDate.Time) {
			t.EarliestDueDate = l.DueDate
		}
	}

	totals := make([]model.StudentPendingTotal, 0, len(byStudent))
	for _, t := range byStudent {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].TotalDue.Cmp(totals[j].TotalDue); c != 0 {
			return c > 0
		}
		return totals[i].StudentID < totals[j].StudentID
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

// DailyCollection sums the payments received on one calendar day in the
// school's zone.
func (s *ReportService) DailyCollection(ctx context.Context, school model.SchoolCode, day model.Date) (*model.DailyCollectionReport, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	collections, err := s.reports.Collections(ctx, school, from, to)
	if err != nil {
		s.log.Error().Err(err).
			Str("op", "daily_collection").
			Str("school_code", school.String()).
			Str("date", day.String()).
			Msg("failed to load collections")
		return nil, fmt.Errorf("load collections: %w", err)
	}

	report := &model.DailyCollectionReport{
		Date:        day.String(),
		Timezone:    s.loc.String(),
		Collections: collections,
		Summary: model.CollectionSummary{
			TotalCollected: decimal.Zero,
			PaymentCount:   len(collections),
			ByPaymentMode:  make(map[model.PaymentMode]decimal.Decimal),
			ByClass:        make(map[int]decimal.Decimal),
		},
	}
	students := make(map[int64]struct{})
	for _, c := range collections {
		report.Summary.TotalCollected = report.Summary.TotalCollected.Add(c.Amount)
		report.Summary.ByPaymentMode[c.PaymentMode] = report.Summary.ByPaymentMode[c.PaymentMode].Add(c.Amount)
		report.Summary.ByClass[c.ClassID] = report.Summary.ByClass[c.ClassID].Add(c.Amount)
		students[c.StudentID] = struct{}{}
	}
	report.Summary.StudentCount = len(students)
	return report, nil
}

func (s *ReportService) outstanding(ctx context.Context, op string, school model.SchoolCode, filter model.OutstandingFilter) ([]model.LedgerLine, error) {
	entries, err := s.reports.Outstanding(ctx, school, filter)
	if err != nil {
		s.log.Error().Err(err).
			Str("op", op).
			Str("school_code", school.String()).
			Msg("failed to load outstanding fees")
		return nil, fmt.Errorf("load outstanding fees: %w", err)
	}

	asOf := s.now()
	lines := make([]model.LedgerLine, 0, len(entries))
	for _, e := range entries {
		line := model.NewLedgerLine(e, asOf)
		if !line.BalanceDue.IsPositive() {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
