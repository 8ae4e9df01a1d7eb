package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
)

// ResolveSchool parses the request's school code and checks it against the
// token scope. On failure the error response has been written and ok is
// false.
func ResolveSchool(c *gin.Context, raw string) (school model.SchoolCode, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingSchoolCode)
		return "", false
	}

	school, err := model.ParseSchoolCode(raw)
	if err != nil {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"school_code": err.Error(),
		})
		return "", false
	}

	if claims := GetClaims(c); claims != nil && !claims.CanAccess(school) {
		response.Fail(c, http.StatusForbidden, response.ErrSchoolScopeMismatch)
		return "", false
	}
	return school, true
}

// QuerySchool resolves the school code from the school_code query parameter.
func QuerySchool(c *gin.Context) (model.SchoolCode, bool) {
	return ResolveSchool(c, c.Query("school_code"))
}
