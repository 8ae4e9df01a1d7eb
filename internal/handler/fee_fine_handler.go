package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/feeledger-backend/internal/middleware"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
	"github.com/stemsi/feeledger-backend/internal/validator"
)

// FeeFineHandler serves the per-school fine catalog.
type FeeFineHandler struct {
	fines FineCatalog
}

// NewFeeFineHandler creates a new FeeFineHandler.
func NewFeeFineHandler(fines FineCatalog) *FeeFineHandler {
	return &FeeFineHandler{fines: fines}
}

// ListFines godoc
// GET /api/v1/fees/fines?school_code=
func (h *FeeFineHandler) ListFines(c *gin.Context) {
	school, ok := middleware.QuerySchool(c)
	if !ok {
		return
	}

	fines, err := h.fines.List(c.Request.Context(), school)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fines": fines})
}

// CreateFine godoc
// POST /api/v1/fees/fines
func (h *FeeFineHandler) CreateFine(c *gin.Context) {
	var req model.CreateFeeFineRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}
	school, ok := middleware.ResolveSchool(c, req.SchoolCode)
	if !ok {
		return
	}

	fine, err := h.fines.Create(c.Request.Context(), school, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"fine": fine})
}
