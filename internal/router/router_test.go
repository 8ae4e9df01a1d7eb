package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/config"
	"github.com/stemsi/feeledger-backend/internal/handler"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The handlers are built without services: every request below is
// settled by middleware before a handler runs.
func newTestRouter(auth *service.AuthService) http.Handler {
	handlers := &Handlers{
		Fine:       handler.NewFeeFineHandler(nil),
		Structure:  handler.NewFeeStructureHandler(nil),
		Ledger:     handler.NewLedgerHandler(nil),
		Adjustment: handler.NewAdjustmentHandler(nil),
		Report:     handler.NewReportHandler(nil),
		Health:     handler.NewHealthHandler(nil, zerolog.Nop()),
	}
	return SetupRouter(auth, handlers, &config.Config{GinMode: "test"}, zerolog.Nop())
}

func request(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(service.NewAuthService("secret", time.Hour))

	w := request(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestFeeRoutesRequireToken(t *testing.T) {
	r := newTestRouter(service.NewAuthService("secret", time.Hour))

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/fees/fines?school_code=SCH-A"},
		{http.MethodGet, "/api/v1/fees/students/1/fees?school_code=SCH-A"},
		{http.MethodGet, "/api/v1/fees/students/pending?school_code=SCH-A"},
		{http.MethodPost, "/api/v1/fees/adjustments/7b6f7c8e-0f4e-4b5e-9a57-2f0c7a3e0b11/approve?school_code=SCH-A"},
		{http.MethodGet, "/api/v1/fees/reports/daily?school_code=SCH-A&date=2024-01-10"},
	} {
		w := request(r, route.method, route.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestApproveRequiresApprovePermission(t *testing.T) {
	auth := service.NewAuthService("secret", time.Hour)
	r := newTestRouter(auth)

	token, err := auth.GenerateAdminToken("clerk-1", "", []string{
		string(model.PermissionFeesRead),
		string(model.PermissionFeesManage),
	})
	require.NoError(t, err)

	w := request(r, http.MethodPost, "/api/v1/fees/adjustments/7b6f7c8e-0f4e-4b5e-9a57-2f0c7a3e0b11/approve?school_code=SCH-A", token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(r, http.MethodPost, "/api/v1/fees/adjustments/7b6f7c8e-0f4e-4b5e-9a57-2f0c7a3e0b11/reject", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWriteRoutesRequireManagePermission(t *testing.T) {
	auth := service.NewAuthService("secret", time.Hour)
	r := newTestRouter(auth)

	token, err := auth.GenerateAdminToken("viewer-1", "", []string{string(model.PermissionFeesRead)})
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/fees/fines",
		"/api/v1/fees/structures",
		"/api/v1/fees/structures/1/assign",
		"/api/v1/fees/student-fees/1/payments",
		"/api/v1/fees/adjustments",
	} {
		w := request(r, http.MethodPost, path, token)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}
