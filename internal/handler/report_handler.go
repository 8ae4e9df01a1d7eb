package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/feeledger-backend/internal/middleware"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
)

// ReportHandler serves the dashboard aggregates.
type ReportHandler struct {
	reports Reports
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports Reports) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// PendingReport godoc
// GET /api/v1/fees/reports/pending?school_code=&class_id=&start_date=&end_date=
// The date range bounds due dates, inclusive.
func (h *ReportHandler) PendingReport(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}
	filter, ok := outstandingFilter(c)
	if !ok {
		return
	}
	start, ok := queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date")
	if !ok {
		return
	}
	if start != nil {
		filter.DueFrom = &start.Time
	}
	if end != nil {
		filter.DueTo = &end.Time
	}
	if start != nil && end != nil && end.Before(start.Time) {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"end_date": "end_date must not be before start_date",
		})
		return
	}

	report, err := h.reports.Pending(c.Request.Context(), school, filter)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// OverdueReport godoc
// GET /api/v1/fees/reports/overdue?school_code=&class_id=
func (h *ReportHandler) OverdueReport(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}
	filter, ok := outstandingFilter(c)
	if !ok {
		return
	}

	report, err := h.reports.Overdue(c.Request.Context(), school, filter)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// PendingStudents godoc
// GET /api/v1/fees/students/pending?school_code=&limit=&class=&section=&academic_year=
// Students ranked by outstanding total, highest first.
func (h *ReportHandler) PendingStudents(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}
	filter, ok := outstandingFilter(c)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidLimit)
			return
		}
		limit = v
		if limit == 0 {
			limit = -1 // explicit zero is out of range
		}
	}

	students, err := h.reports.PendingByStudent(c.Request.Context(), school, filter, limit)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// DailyCollection godoc
// GET /api/v1/fees/reports/daily?school_code=&date=
// The date is a calendar day in the school's time zone.
func (h *ReportHandler) DailyCollection(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}
	if strings.TrimSpace(c.Query("date")) == "" {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"date": "date is required",
		})
		return
	}
	day, ok := queryDate(c, "date")
	if !ok {
		return
	}

	report, err := h.reports.DailyCollection(c.Request.Context(), school, *day)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

func outstandingFilter(c *gin.Context) (model.OutstandingFilter, bool) {
	classID, ok := queryInt(c, "class_id", "class")
	if !ok {
		return model.OutstandingFilter{}, false
	}
	return model.OutstandingFilter{
		ClassID:      classID,
		Section:      strings.TrimSpace(c.Query("section")),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
	}, true
}
