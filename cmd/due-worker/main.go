// Command due-worker periodically scans recurring templates and
// announces the ones due and unpaid for the current month.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"despesas/internal/backend"
	"despesas/internal/config"
	"despesas/internal/events"
	applog "despesas/internal/log"
	"despesas/internal/services"
)

func main() {
	_ = godotenv.Load()

	logger := applog.Setup(applog.ComponentWorker)
	logger.Info("Starting due-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, err := backend.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize store backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, due reminders will only be logged", "error", err)
			eventsClient = nil
		} else {
			defer eventsClient.Close()
		}
	}

	scanner := services.NewDueScanner(st, eventsClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Due scanner configured",
		"interval", cfg.DueCheckInterval, "backend", cfg.DataBackend)

	if err := scanner.Run(ctx, cfg.DueCheckInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Due scanner stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Due-worker stopped gracefully")
}
