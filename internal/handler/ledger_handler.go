package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/feeledger-backend/internal/middleware"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
	"github.com/stemsi/feeledger-backend/internal/validator"
)

// LedgerHandler serves student ledger reads and payments.
type LedgerHandler struct {
	ledger Ledger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// StudentFees godoc
// GET /api/v1/fees/students/:id/fees?school_code=&academic_year=&status=
// An unknown student yields an empty ledger, not a 404.
func (h *LedgerHandler) StudentFees(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	filter := model.LedgerFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		Status:       model.StudentFeeStatus(strings.TrimSpace(c.Query("status"))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"status": "status must be one of pending partial paid overdue",
		})
		return
	}

	ledger, err := h.ledger.StudentFees(c.Request.Context(), school, studentID, filter)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ledger)
}

// GetFee godoc
// GET /api/v1/fees/student-fees/:id?school_code=
// Returns rows under inactive structures too.
func (h *LedgerHandler) GetFee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	line, err := h.ledger.GetFee(c.Request.Context(), school, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fee": line})
}

// RecordPayment godoc
// POST /api/v1/fees/student-fees/:id/payments
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.RecordPaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}
	school, ok := middleware.ResolveSchool(c, req.SchoolCode)
	if !ok {
		return
	}

	receipt, err := h.ledger.RecordPayment(c.Request.Context(), school, id, middleware.Actor(c), req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, receipt)
}
