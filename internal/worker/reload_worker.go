package worker

import (
	"context"
	"fmt"

	"fuelboard/internal/amqp"
	"fuelboard/internal/core"
	"fuelboard/internal/log"
	"fuelboard/internal/services"
)

// ReloadWorker turns dataset reload messages into dataset loads.
type ReloadWorker struct {
	reloader Reloader
	logger   *log.Logger
}

// NewReloadWorker creates a worker; a nil logger logs to stdout.
func NewReloadWorker(reloader Reloader, logger *log.Logger) *ReloadWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReloadWorker{reloader: reloader, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleReloadMessage processes a single reload message from AMQP. Only
// source errors are returned, so the message is retried; a load rejected by
// validation will not pass on redelivery either.
func (w *ReloadWorker) HandleReloadMessage(ctx context.Context, msg *amqp.DatasetReloadMessage) error {
	w.logger.InfoContext(ctx, "Processing reload message",
		"id", msg.ID,
		"reason", msg.Reason,
		"import_id", msg.ImportID)

	_, err := w.reloader.Reload(ctx, services.TriggerMessage)
	if err == nil {
		return nil
	}
	if core.ErrorKind(err) == "source" {
		return fmt.Errorf("reload dataset: %w", err)
	}

	w.logger.WarnContext(ctx, "Reload message produced an invalid dataset",
		"id", msg.ID,
		"error", err)
	return nil
}

// Consumer is the subset of the AMQP client the worker needs.
type Consumer interface {
	ConsumeReload(ctx context.Context, handler amqp.ReloadHandler) error
}

// Run consumes reload messages until ctx is done.
func (w *ReloadWorker) Run(ctx context.Context, c Consumer) error {
	return c.ConsumeReload(ctx, w.HandleReloadMessage)
}
