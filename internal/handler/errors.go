package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
	"github.com/stemsi/feeledger-backend/internal/service"
)

// failFromError maps a service error onto the response envelope. Anything
// unrecognised is an upstream failure.
func failFromError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, vErr.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, model.ErrAdjustmentNotPending):
		response.Fail(c, http.StatusConflict, response.ErrAdjustmentNotPending)
	case errors.Is(err, service.ErrDuplicateActiveStructure):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateActiveStructure)
	case errors.Is(err, service.ErrStructureInactive):
		response.Fail(c, http.StatusConflict, response.ErrStructureInactive)
	case errors.Is(err, model.ErrOverpayment):
		response.Fail(c, http.StatusBadRequest, response.ErrOverpayment)
	case errors.Is(err, model.ErrInvalidAmount):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAmount)
	case errors.Is(err, service.ErrFineNotApplicable):
		response.Fail(c, http.StatusBadRequest, response.ErrFineNotApplicable)
	case errors.Is(err, service.ErrInvalidLimit):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidLimit)
	case errors.Is(err, model.ErrApproverRequired):
		response.Fail(c, http.StatusUnauthorized, response.ErrApproverRequired)
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23503") {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("route", c.FullPath()).
			Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional positive integer query parameter. The
// first non-empty key wins.
func queryInt(c *gin.Context, keys ...string) (*int, bool) {
	for _, key := range keys {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				key: key + " must be a positive integer",
			})
			return nil, false
		}
		return &v, true
	}
	return nil, true
}

func queryDate(c *gin.Context, key string) (*model.Date, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			key: key + " must be a date in YYYY-MM-DD format",
		})
		return nil, false
	}
	return &d, true
}

func bindFailed(c *gin.Context, fields map[string]string) {
	response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, fields)
}
