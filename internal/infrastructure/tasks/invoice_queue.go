package tasks

import (
	"context"
	"time"

	"github.com/knawat/mp-backend/internal/application/orders"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence"
)

// InvoiceQueue adapts the invoice task table to the pipeline's scheduler
// contract, binding the configured invoicing delay.
type InvoiceQueue struct {
	repo  *persistence.GormInvoiceTaskRepository
	delay time.Duration
}

// NewInvoiceQueue creates a scheduler writing to the invoice task table.
func NewInvoiceQueue(repo *persistence.GormInvoiceTaskRepository, delay time.Duration) *InvoiceQueue {
	return &InvoiceQueue{repo: repo, delay: delay}
}

// Schedule enqueues the deferred invoice step for an order.
func (q *InvoiceQueue) Schedule(ctx context.Context, storeURL, orderID string) error {
	return q.repo.Enqueue(ctx, storeURL, orderID, q.delay)
}

// Ensure InvoiceQueue implements orders.InvoiceScheduler
var _ orders.InvoiceScheduler = (*InvoiceQueue)(nil)
