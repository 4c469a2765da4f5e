package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mitcash/internal/amqp"
	"mitcash/internal/auth"
	"mitcash/internal/backend"
	"mitcash/internal/categories"
	"mitcash/internal/config"
	apphttp "mitcash/internal/http"
	applog "mitcash/internal/log"
	"mitcash/internal/prefs"
	"mitcash/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler:   applog.HandlerFor(cfg.LogFormat, slog.LevelInfo),
	})
	applog.SetDefault(logger)

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
	logger.Info("Data backend initialized", "backend", cfg.DataBackend)

	prefsStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		logger.Error("Failed to open preferences store", "error", err, "path", cfg.PrefsPath)
		os.Exit(1)
	}
	registry := categories.New(prefsStore.State().CustomCategories)

	// AMQP is optional. Without it writes still land in the store; only
	// downstream event consumers go dark.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, transaction events disabled", "error", err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	txService := services.NewTransactionService(result.Store, amqpClient)
	defer txService.Close()

	var gate *auth.Gate
	if result.Verifier != nil && cfg.AllowedEmail != "" {
		gate = auth.NewGate(result.Verifier, cfg.AllowedEmail, slog.Default())
		logger.Info("Sign-in gate enabled", "allowed_email", cfg.AllowedEmail)
	} else {
		logger.Info("Sign-in gate disabled, all requests accepted")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		Dashboard:    services.NewDashboardService(result.Store, registry),
		Transactions: txService,
		Propagator:   services.NewRecurringPropagator(result.Store, txService),
		Registry:     registry,
		Prefs:        prefsStore,
		Gate:         gate,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting mitcash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
