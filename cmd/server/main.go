package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduos-project/proctor-backend/internal/audit"
	"github.com/eduos-project/proctor-backend/internal/auth"
	"github.com/eduos-project/proctor-backend/internal/config"
	"github.com/eduos-project/proctor-backend/internal/exam"
	"github.com/eduos-project/proctor-backend/internal/handler"
	"github.com/eduos-project/proctor-backend/internal/logger"
	"github.com/eduos-project/proctor-backend/internal/router"
	"github.com/eduos-project/proctor-backend/internal/session"
	"github.com/eduos-project/proctor-backend/internal/validator"
)

// fallbackCredential keeps dev setups working when no CREDENTIAL_HASH is
// provisioned. Matches the simulator default; never rely on it in production.
const fallbackCredential = "exam123"

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Dur("exam_duration", cfg.ExamDuration).
		Int("violation_threshold", cfg.ViolationThreshold).
		Msg("Starting Proctor Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Open Audit Log ────────────────────────────────────────────────
	auditLog, err := audit.Open(cfg.AuditLogPath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.AuditLogPath).Msg("Failed to open audit log")
	}
	defer auditLog.Close()

	// ─── Initialize Auth ───────────────────────────────────────────────
	credHash := cfg.CredentialHash
	if credHash == "" {
		log.Warn().Msg("CREDENTIAL_HASH not set, falling back to dev default credential")
		credHash, err = auth.HashCredential(fallbackCredential, cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash fallback credential")
		}
	}
	provider := auth.NewBcryptProvider(credHash)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	// ─── Initialize Session Controller ─────────────────────────────────
	loader := exam.NewLoader(cfg.ExamDir)

	ctrl := session.NewController(session.Config{
		Duration:           cfg.ExamDuration,
		ViolationThreshold: cfg.ViolationThreshold,
		SweepInterval:      cfg.SweepInterval,
	}, loader, provider, auditLog, log)

	ctrlCtx, ctrlCancel := context.WithCancel(context.Background())
	go ctrl.Run(ctrlCtx)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(ctrl, loader, provider, tokens, log),
		WS:      handler.NewWSHandler(ctrl, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(tokens, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the controller; an active session is aborted and its timer
	//    and monitor released before the loop exits.
	ctrlCancel()
	time.Sleep(time.Second) // Allow the event loop and audit queue to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
