package main

import (
	"context"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/nats"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/adapters/postgres"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/usecases"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/config"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/logging"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/workflows"
)

func main() {
	cfg, err := config.Load("travelguard-escalator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("travelguard-escalator", logLevel, "json")

	ctx := context.Background()

	// Activities hit the same stores as the API.
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer natsConn.Drain()

	responderSvc := usecases.NewResponderService(
		postgres.NewResponderRepo(db), nil, cfg.Safety.ResponderCacheTTL,
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.EscalationWorkflow)
	w.RegisterActivity(&workflows.EscalationActivities{
		Alerts:     postgres.NewAlertRepo(db),
		UoW:        postgres.NewSafetyTx(db),
		Responders: responderSvc,
		Notifier:   natsadapter.NewDispatcher(natsConn),
	})

	log.Println("escalator worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
