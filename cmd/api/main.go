// Copyright (c) 2026 DevisApp. All rights reserved.

// Command api is the entry point for the DevisApp HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kad123/DevisAppCC/internal/ai"
	"github.com/Kad123/DevisAppCC/internal/api"
	"github.com/Kad123/DevisAppCC/internal/auth"
	"github.com/Kad123/DevisAppCC/internal/billing"
	"github.com/Kad123/DevisAppCC/internal/chantier"
	"github.com/Kad123/DevisAppCC/internal/crm"
	"github.com/Kad123/DevisAppCC/internal/platform/clock"
	"github.com/Kad123/DevisAppCC/internal/platform/config"
	"github.com/Kad123/DevisAppCC/internal/platform/constants"
	"github.com/Kad123/DevisAppCC/internal/platform/migration"
	pgstore "github.com/Kad123/DevisAppCC/internal/platform/postgres"
	redisstore "github.com/Kad123/DevisAppCC/internal/platform/redis"
	"github.com/Kad123/DevisAppCC/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[DevisApp] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Long-lived context for background workers (rate-limit cleanup).
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Codec ────────────────────────────────────────────────────
	systemClock := clock.System{}
	codec, err := sec.NewTokenCodec(cfg.JWTSecret, constants.AuthIssuer, systemClock)
	must(log, err, "initialize token codec")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	refreshTokenRepository := auth.NewRefreshTokenRepository(pool)
	authService := auth.NewService(userRepository, refreshTokenRepository, codec, systemClock, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authHandler := auth.NewHandler(authService, cfg.CookieSecure, cfg.AccessTokenTTL)

	clientRepository := crm.NewClientRepository(pool)
	projetRepository := crm.NewProjetRepository(pool)
	crmService := crm.NewService(clientRepository, projetRepository)
	crmHandler := crm.NewHandler(crmService)

	devisRepository := billing.NewDevisRepository(pool)
	factureRepository := billing.NewFactureRepository(pool)
	billingService := billing.NewService(devisRepository, factureRepository, projetRepository, systemClock)
	billingHandler := billing.NewHandler(billingService)

	jalonRepository := chantier.NewJalonRepository(pool)
	journalRepository := chantier.NewJournalRepository(pool)
	pointageRepository := chantier.NewPointageRepository(pool)
	chantierService := chantier.NewService(jalonRepository, journalRepository, pointageRepository, projetRepository, systemClock)
	chantierHandler := chantier.NewHandler(chantierService)

	aiClient := ai.NewClient(cfg.AIEndpoint, cfg.AIAPIKey)
	aiService := ai.NewService(aiClient, rdb, billingService)
	aiHandler := ai.NewHandler(aiService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		CRM:       crmHandler,
		Billing:   billingHandler,
		Chantier:  chantierHandler,
		AI:        aiHandler,
	}

	server := api.NewServer(appCtx, cfg, log, codec, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
