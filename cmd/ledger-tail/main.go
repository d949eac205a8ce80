// Command ledger-tail consumes ledger events from AMQP and logs them
// as a structured audit trail. Handy for watching household activity
// without polling the API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"despesas/internal/config"
	"despesas/internal/events"
	applog "despesas/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := applog.Setup(applog.ComponentWorker)
	logger.Info("Starting ledger-tail")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for ledger-tail")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.Consume(ctx, func(event *events.LedgerEvent) error {
		logger.Info("Ledger event",
			"kind", event.Kind,
			"expense_id", event.ExpenseID,
			"recurring_id", event.RecurringExpenseID,
			"month", event.Month,
			"amount_cents", event.AmountCents,
			"timestamp", event.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Ledger-tail stopped gracefully")
}
