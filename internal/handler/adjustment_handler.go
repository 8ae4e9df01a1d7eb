package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/feeledger-backend/internal/middleware"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
	"github.com/stemsi/feeledger-backend/internal/validator"
)

// AdjustmentHandler serves the adjustment workflow.
type AdjustmentHandler struct {
	adjustments AdjustmentWorkflow
}

// NewAdjustmentHandler creates a new AdjustmentHandler.
func NewAdjustmentHandler(adjustments AdjustmentWorkflow) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments}
}

// ProposeAdjustment godoc
// POST /api/v1/fees/adjustments
// The ledger is untouched until the adjustment is approved.
func (h *AdjustmentHandler) ProposeAdjustment(c *gin.Context) {
	var req model.ProposeAdjustmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}
	school, ok := middleware.ResolveSchool(c, req.SchoolCode)
	if !ok {
		return
	}

	adj, err := h.adjustments.Propose(c.Request.Context(), school, middleware.Actor(c), req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"adjustment": adj})
}

// ListAdjustments godoc
// GET /api/v1/fees/adjustments?school_code=&status=&student_fee_id=
func (h *AdjustmentHandler) ListAdjustments(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}
	feeID, ok := queryInt(c, "student_fee_id")
	if !ok {
		return
	}

	filter := model.AdjustmentFilter{Status: model.AdjustmentStatus(c.Query("status"))}
	switch filter.Status {
	case "", model.AdjustmentStatusPending, model.AdjustmentStatusApproved, model.AdjustmentStatusRejected:
	default:
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"status": "status must be one of pending approved rejected",
		})
		return
	}
	if feeID != nil {
		id := int64(*feeID)
		filter.StudentFeeID = &id
	}

	adjustments, err := h.adjustments.List(c.Request.Context(), school, filter)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"adjustments": adjustments})
}

// GetAdjustment godoc
// GET /api/v1/fees/adjustments/:id?school_code=
func (h *AdjustmentHandler) GetAdjustment(c *gin.Context) {
	id, ok := adjustmentID(c)
	if !ok {
		return
	}
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	adj, err := h.adjustments.Get(c.Request.Context(), school, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"adjustment": adj})
}

// ApproveAdjustment godoc
// POST /api/v1/fees/adjustments/:id/approve?school_code=
// The approver is the token subject. Approving twice returns 409 and
// leaves the ledger as it was after the first approval.
func (h *AdjustmentHandler) ApproveAdjustment(c *gin.Context) {
	id, ok := adjustmentID(c)
	if !ok {
		return
	}
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	result, err := h.adjustments.Approve(c.Request.Context(), school, id, middleware.Actor(c))
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// RejectAdjustment godoc
// POST /api/v1/fees/adjustments/:id/reject
func (h *AdjustmentHandler) RejectAdjustment(c *gin.Context) {
	id, ok := adjustmentID(c)
	if !ok {
		return
	}
	var req model.RejectAdjustmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}
	school, ok := middleware.ResolveSchool(c, req.SchoolCode)
	if !ok {
		return
	}

	adj, err := h.adjustments.Reject(c.Request.Context(), school, id, middleware.Actor(c), req.Reason)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"adjustment": adj})
}

func adjustmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
