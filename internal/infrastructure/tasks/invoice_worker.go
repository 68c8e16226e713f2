package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/application/orders"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// InvoiceProcessor runs the deferred invoice step for one order.
type InvoiceProcessor interface {
	ProcessInvoice(ctx context.Context, storeURL, orderID string) error
}

// InvoiceWorkerConfig holds configuration for the invoice worker.
type InvoiceWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// DefaultInvoiceWorkerConfig returns default configuration.
func DefaultInvoiceWorkerConfig() InvoiceWorkerConfig {
	return InvoiceWorkerConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  1,
	}
}

// InvoiceWorker drains the invoice task table in the background. Each claimed
// task re-checks the order's current status through the processor, so an
// order cancelled inside the invoicing delay is skipped, not invoiced.
type InvoiceWorker struct {
	tasks     *persistence.GormInvoiceTaskRepository
	processor InvoiceProcessor
	config    InvoiceWorkerConfig
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInvoiceWorker creates an invoice worker.
func NewInvoiceWorker(
	tasks *persistence.GormInvoiceTaskRepository,
	processor InvoiceProcessor,
	config InvoiceWorkerConfig,
	logger *zap.Logger,
) *InvoiceWorker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultInvoiceWorkerConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultInvoiceWorkerConfig().BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultInvoiceWorkerConfig().MaxAttempts
	}
	return &InvoiceWorker{
		tasks:     tasks,
		processor: processor,
		config:    config,
		logger:    logger,
	}
}

// Start starts the background processing.
func (w *InvoiceWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.processLoop(ctx)

	w.logger.Info("invoice worker started",
		zap.Int("batch_size", w.config.BatchSize),
		zap.Duration("poll_interval", w.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the worker.
func (w *InvoiceWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("invoice worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *InvoiceWorker) processLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *InvoiceWorker) processBatch(ctx context.Context) {
	claimed, err := w.tasks.ClaimDue(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("invoice task claim failed", zap.Error(err))
		return
	}

	for i := range claimed {
		w.processTask(ctx, &claimed[i])
	}
}

func (w *InvoiceWorker) processTask(ctx context.Context, task *models.InvoiceTaskModel) {
	err := w.processor.ProcessInvoice(ctx, task.StoreURL, task.OrderID)
	switch {
	case err == nil:
		task.MarkDone()
	case errors.Is(err, orders.ErrInvoiceSkipped):
		task.MarkSkipped()
	default:
		w.logger.Warn("invoice task failed",
			zap.String("orderId", task.OrderID),
			zap.Int("attempts", task.Attempts+1),
			zap.Error(err))
		task.MarkFailed(err.Error(), w.config.MaxAttempts)
	}

	if err := w.tasks.Update(ctx, task); err != nil {
		w.logger.Error("invoice task status write failed",
			zap.String("orderId", task.OrderID),
			zap.Error(err))
	}
}
