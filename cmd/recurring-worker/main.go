package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mitcash/internal/amqp"
	"mitcash/internal/backend"
	"mitcash/internal/config"
	"mitcash/internal/core"
	applog "mitcash/internal/log"
	"mitcash/internal/services"
)

// propagatedKinds are the collections the worker carries forward each period.
// Income is excluded: salaries are entered by hand when they arrive.
var propagatedKinds = []core.Kind{core.KindExpense, core.KindBill}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentWorker,
		Handler:   applog.HandlerFor(cfg.LogFormat, slog.LevelInfo),
	})
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(slog.Default())
	result, err := factory.CreateStore(ctx, backend.Config{
		Type:                    backend.Type(cfg.DataBackend),
		SQLiteDBPath:            cfg.SQLiteDBPath,
		FirestoreProjectID:      cfg.FirestoreProjectID,
		FirestoreCredentialFile: cfg.FirestoreCredentialFile,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// AMQP is optional. Without it propagated transactions still land in the
	// store; only downstream event consumers go dark.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		dialCtx, dialCancel := context.WithTimeout(ctx, 30*time.Second)
		amqpClient, err = amqp.Dial(dialCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		dialCancel()
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	txService := services.NewTransactionService(result.Store, amqpClient)
	defer txService.Close()

	propagator := services.NewRecurringPropagator(result.Store, txService)

	logger.Info("Recurring propagator configured",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	// Run initial propagation on startup
	logger.Info("Running initial recurring propagation...")
	runPropagation(ctx, logger, propagator, time.Now())

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Propagating recurring transactions...")
				runPropagation(ctx, logger, propagator, now)
				logger.Info("Propagation pass complete",
					"next_check", now.Add(cfg.RecurringInterval).Format("15:04:05"))
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down recurring-worker...")
	cancel()
	logger.Info("Recurring-worker shutdown complete")
}

// runPropagation carries each kind's recurring transactions into the period
// containing now. A failed kind is logged and does not block the others.
func runPropagation(ctx context.Context, logger *applog.Logger, propagator *services.RecurringPropagator, now time.Time) {
	target := core.Period{Year: now.Year(), Month: int(now.Month())}
	for _, kind := range propagatedKinds {
		result, err := propagator.Propagate(ctx, kind, target)
		if err != nil {
			logger.Error("Propagation failed", "kind", kind, "target", target.String(), "error", err)
			continue
		}
		logger.Info("Propagation complete",
			"kind", kind,
			"target", target.String(),
			"sources_found", result.SourcesFound,
			"created", result.Created,
			"skipped", result.Skipped)
	}
}
