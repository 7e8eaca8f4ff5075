package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/http"
	natsadapter "github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/nats"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/postgres"
	temporaladapter "github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/temporal"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/valkey"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/ports"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/usecases"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/config"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/logging"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("travelguard-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("travelguard-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS: JetStream publisher for durable safety events plus a raw
	// connection for the notification gateway and the WebSocket relay.
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats conn: %v", err)
	}
	defer natsConn.Drain()

	dispatcher := natsadapter.NewDispatcher(natsConn)

	// Temporal (optional): without it panics still commit and notify, they
	// just never escalate.
	var escalator ports.EscalationScheduler
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		slog.Warn("temporal unavailable, escalation disabled", "error", err)
	} else {
		defer tc.Close()
		escalator = temporaladapter.NewScheduler(
			tc, cfg.Temporal.TaskQueue, cfg.Safety.EscalationGraceMinutes, cfg.Safety.AuthorityEmail,
		)
	}

	// Repos
	statusRepo := postgres.NewStatusRepo(db)
	alertRepo := postgres.NewAlertRepo(db)
	locationRepo := postgres.NewLocationRepo(db)
	responderRepo := postgres.NewResponderRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	safetyTx := postgres.NewSafetyTx(db)

	// Use cases
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	responderSvc := usecases.NewResponderService(responderRepo, cacheSvc, cfg.Safety.ResponderCacheTTL)
	safetySvc := usecases.NewSafetyService(
		statusRepo, alertRepo, safetyTx, locationRepo, profileRepo,
		responderSvc, dispatcher, publisher, escalator,
		usecases.SafetyConfig{
			MissedCheckinThreshold: cfg.Safety.MissedCheckinThreshold,
			CheckinInterval:        time.Duration(cfg.Safety.CheckinIntervalMinutes) * time.Minute,
			NotifyTimeout:          time.Duration(cfg.Safety.NotifyTimeoutSeconds) * time.Second,
		},
	)

	deps := &http.Dependencies{
		Safety:     safetySvc,
		Responders: responderSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024, // location and alert payloads are tiny
		AppName:      "TravelGuard API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Traveler-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
