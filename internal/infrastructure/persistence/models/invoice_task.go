package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceTaskStatus is the lifecycle state of a deferred invoice task.
type InvoiceTaskStatus string

const (
	InvoiceTaskPending    InvoiceTaskStatus = "PENDING"
	InvoiceTaskProcessing InvoiceTaskStatus = "PROCESSING"
	InvoiceTaskDone       InvoiceTaskStatus = "DONE"
	InvoiceTaskSkipped    InvoiceTaskStatus = "SKIPPED"
	InvoiceTaskDead       InvoiceTaskStatus = "DEAD"
)

// InvoiceTaskModel is a delayed-task outbox row keyed by order id. A worker
// claims due tasks, re-checks the order's current status and creates the
// invoice, which closes the race between cancellation and the deferred step.
type InvoiceTaskModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	StoreURL  string            `gorm:"size:255;not null"`
	OrderID   string            `gorm:"size:64;uniqueIndex;not null"`
	Status    InvoiceTaskStatus `gorm:"type:varchar(16);default:PENDING;index:idx_invoice_status_run,priority:1"`
	RunAfter  time.Time         `gorm:"not null;index:idx_invoice_status_run,priority:2"`
	Attempts  int               `gorm:"default:0"`
	LastError string            `gorm:"type:text"`
	CreatedAt time.Time         `gorm:"not null"`
	UpdatedAt time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceTaskModel) TableName() string {
	return "invoice_tasks"
}

// NewInvoiceTask builds a pending task due after the given delay.
func NewInvoiceTask(storeURL, orderID string, delay time.Duration) *InvoiceTaskModel {
	now := time.Now().UTC()
	return &InvoiceTaskModel{
		ID:        uuid.New(),
		StoreURL:  storeURL,
		OrderID:   orderID,
		Status:    InvoiceTaskPending,
		RunAfter:  now.Add(delay),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkDone marks the task as completed.
func (t *InvoiceTaskModel) MarkDone() {
	t.Status = InvoiceTaskDone
	t.UpdatedAt = time.Now().UTC()
}

// MarkSkipped marks the task as skipped (order left the open state).
func (t *InvoiceTaskModel) MarkSkipped() {
	t.Status = InvoiceTaskSkipped
	t.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a failed attempt. Once attempts reach maxAttempts the
// task goes dead and is never retried.
func (t *InvoiceTaskModel) MarkFailed(reason string, maxAttempts int) {
	t.Attempts++
	t.LastError = reason
	if t.Attempts >= maxAttempts {
		t.Status = InvoiceTaskDead
	} else {
		t.Status = InvoiceTaskPending
	}
	t.UpdatedAt = time.Now().UTC()
}
