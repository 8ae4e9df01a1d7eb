package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/config"
	"github.com/stemsi/feeledger-backend/internal/handler"
	"github.com/stemsi/feeledger-backend/internal/middleware"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Fine       *handler.FeeFineHandler
	Structure  *handler.FeeStructureHandler
	Ledger     *handler.LedgerHandler
	Adjustment *handler.AdjustmentHandler
	Report     *handler.ReportHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	fees := router.Group("/api/v1/fees")
	fees.Use(middleware.RequireAdminJWT(auth))

	read := middleware.RequirePermission(model.PermissionFeesRead)
	manage := middleware.RequirePermission(model.PermissionFeesManage)
	approve := middleware.RequirePermission(model.PermissionFeesApprove)

	// ─── Fine catalog ──────────────────────────────────────────────────
	fees.GET("/fines", read, handlers.Fine.ListFines)
	fees.POST("/fines", manage, handlers.Fine.CreateFine)

	// ─── Fee structures ────────────────────────────────────────────────
	fees.GET("/structures", read, handlers.Structure.ListStructures)
	fees.GET("/structures/:id", read, handlers.Structure.GetStructure)
	fees.POST("/structures", manage, handlers.Structure.CreateStructure)
	fees.POST("/structures/:id/deactivate", manage, handlers.Structure.DeactivateStructure)
	fees.POST("/structures/:id/assign", manage, handlers.Structure.AssignStructure)

	// ─── Ledger ────────────────────────────────────────────────────────
	fees.GET("/students/pending", read, handlers.Report.PendingStudents)
	fees.GET("/students/:id/fees", read, handlers.Ledger.StudentFees)
	fees.GET("/student-fees/:id", read, handlers.Ledger.GetFee)
	fees.POST("/student-fees/:id/payments", manage, handlers.Ledger.RecordPayment)

	// ─── Adjustments ───────────────────────────────────────────────────
	fees.GET("/adjustments", read, handlers.Adjustment.ListAdjustments)
	fees.GET("/adjustments/:id", read, handlers.Adjustment.GetAdjustment)
	fees.POST("/adjustments", manage, handlers.Adjustment.ProposeAdjustment)
	fees.POST("/adjustments/:id/approve", approve, handlers.Adjustment.ApproveAdjustment)
	fees.POST("/adjustments/:id/reject", approve, handlers.Adjustment.RejectAdjustment)

	// ─── Reports ───────────────────────────────────────────────────────
	fees.GET("/reports/pending", read, handlers.Report.PendingReport)
	fees.GET("/reports/overdue", read, handlers.Report.OverdueReport)
	fees.GET("/reports/daily", read, handlers.Report.DailyCollection)

	return router
}
