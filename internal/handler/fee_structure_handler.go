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

// FeeStructureHandler serves the fee structure catalog and batch
// assignment of structures to students.
type FeeStructureHandler struct {
	structures StructureCatalog
}

// NewFeeStructureHandler creates a new FeeStructureHandler.
func NewFeeStructureHandler(structures StructureCatalog) *FeeStructureHandler {
	return &FeeStructureHandler{structures: structures}
}

// ListStructures godoc
// GET /api/v1/fees/structures?school_code=&academic_year=&class_id=&include_inactive=
func (h *FeeStructureHandler) ListStructures(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}
	classID, ok := queryInt(c, "class_id")
	if !ok {
		return
	}

	filter := model.FeeStructureFilter{
		AcademicYear:    strings.TrimSpace(c.Query("academic_year")),
		ClassID:         classID,
		IncludeInactive: c.Query("include_inactive") == "true",
	}
	structures, err := h.structures.List(c.Request.Context(), school, filter)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"structures": structures})
}

// GetStructure godoc
// GET /api/v1/fees/structures/:id?school_code=
// Returns inactive structures as well.
func (h *FeeStructureHandler) GetStructure(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	structure, err := h.structures.Get(c.Request.Context(), school, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"structure": structure})
}

// CreateStructure godoc
// POST /api/v1/fees/structures
func (h *FeeStructureHandler) CreateStructure(c *gin.Context) {
	var req model.CreateFeeStructureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}
	school, ok := middleware.ResolveSchool(c, req.SchoolCode)
	if !ok {
		return
	}

	structure, err := h.structures.Create(c.Request.Context(), school, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"structure": structure})
}

// DeactivateStructure godoc
// POST /api/v1/fees/structures/:id/deactivate?school_code=
// Ledger rows created under the structure are kept.
func (h *FeeStructureHandler) DeactivateStructure(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	structure, err := h.structures.Deactivate(c.Request.Context(), school, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"structure": structure})
}

// AssignStructure godoc
// POST /api/v1/fees/structures/:id/assign
func (h *FeeStructureHandler) AssignStructure(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.AssignFeeStructureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}
	school, ok := middleware.ResolveSchool(c, req.SchoolCode)
	if !ok {
		return
	}

	result, err := h.structures.Assign(c.Request.Context(), school, id, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}
