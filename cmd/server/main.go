package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feeledger-backend/internal/config"
	"github.com/stemsi/feeledger-backend/internal/database"
	"github.com/stemsi/feeledger-backend/internal/handler"
	"github.com/stemsi/feeledger-backend/internal/logger"
	"github.com/stemsi/feeledger-backend/internal/repository"
	"github.com/stemsi/feeledger-backend/internal/router"
	"github.com/stemsi/feeledger-backend/internal/service"
	"github.com/stemsi/feeledger-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.SchoolTimezone).
		Msg("Starting FeeLedger Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	fineRepo := repository.NewFeeFineRepository(pool)
	fineCache := repository.NewFineCache(rdb, cfg.FineCacheTTL)
	structureRepo := repository.NewFeeStructureRepository(pool)
	studentFeeRepo := repository.NewStudentFeeRepository(pool)
	adjustmentRepo := repository.NewAdjustmentRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	loc := cfg.Location()
	clock := service.SchoolClock(loc)

	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	fineService := service.NewFeeFineService(fineRepo, fineCache, log)
	structureService := service.NewFeeStructureService(structureRepo, studentFeeRepo, fineRepo, log, clock)
	ledgerService := service.NewLedgerService(studentFeeRepo, log, clock)
	adjustmentService := service.NewAdjustmentService(adjustmentRepo, studentFeeRepo, fineRepo, log, clock)
	reportService := service.NewReportService(reportRepo, loc, cfg.PendingDefaultLimit, log, clock)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Fine:       handler.NewFeeFineHandler(fineService),
		Structure:  handler.NewFeeStructureHandler(structureService),
		Ledger:     handler.NewLedgerHandler(ledgerService),
		Adjustment: handler.NewAdjustmentHandler(adjustmentService),
		Report:     handler.NewReportHandler(reportService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// In-flight payment and approval transactions get 10s to commit.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
