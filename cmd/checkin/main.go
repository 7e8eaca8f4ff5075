package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/nats"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/postgres"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/usecases"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/config"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/logging"
)

// sweepBatchSize caps how many overdue travelers one pass processes.
const sweepBatchSize = 200

func main() {
	cfg, err := config.Load("travelguard-checkin")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("travelguard-checkin", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	statusRepo := postgres.NewStatusRepo(db)
	alertRepo := postgres.NewAlertRepo(db)
	safetyTx := postgres.NewSafetyTx(db)
	locationRepo := postgres.NewLocationRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	responderRepo := postgres.NewResponderRepo(db)

	// The sweeper only records misses; it never sends notifications, so the
	// dispatcher and escalator stay unset.
	responderSvc := usecases.NewResponderService(responderRepo, nil, cfg.Safety.ResponderCacheTTL)
	engine := usecases.NewSafetyService(
		statusRepo, alertRepo, safetyTx, locationRepo, profileRepo,
		responderSvc, nil, publisher, nil,
		usecases.SafetyConfig{
			MissedCheckinThreshold: cfg.Safety.MissedCheckinThreshold,
			CheckinInterval:        time.Duration(cfg.Safety.CheckinIntervalMinutes) * time.Minute,
			NotifyTimeout:          time.Duration(cfg.Safety.NotifyTimeoutSeconds) * time.Second,
		},
	)

	interval := time.Duration(cfg.Safety.SweepIntervalSeconds) * time.Second
	slog.Info("check-in sweeper starting", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			sweep(ctx, statusRepo, engine)
		case sig := <-quit:
			slog.Info("shutdown signal received", "signal", sig.String())
			return
		}
	}
}

// sweep marks one missed check-in for every traveler whose expected check-in
// deadline has passed.
func sweep(ctx context.Context, statuses *postgres.StatusRepo, engine *usecases.SafetyService) {
	now := time.Now().UTC()
	overdue, err := statuses.ListOverdue(ctx, now, sweepBatchSize)
	if err != nil {
		slog.Error("list overdue travelers", "error", err)
		return
	}
	if len(overdue) == 0 {
		return
	}

	var marked, missing int
	for _, status := range overdue {
		res, err := engine.ReportMissedCheckin(ctx, status.TravelerID)
		if err != nil {
			slog.Error("record missed check-in", "traveler_id", status.TravelerID, "error", err)
			continue
		}
		marked++
		if res.AlertID != "" {
			missing++
			slog.Warn("traveler marked missing",
				"traveler_id", status.TravelerID,
				"missed_checkins", res.MissedCheckins,
				"alert_id", res.AlertID,
			)
		}
	}

	slog.Info("sweep complete", "overdue", len(overdue), "marked", marked, "went_missing", missing)
}
