package oms

import (
	"context"
	"fmt"
	"time"

	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/store"
)

// StatusError is a structured rejection from the OMS ledger. The pipeline
// propagates the OMS-provided status code to the caller unchanged.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("oms: %d %s", e.StatusCode, e.Message)
}

// Invoice is an OMS invoice reference as returned by the invoice endpoints.
type Invoice struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Number    string    `json:"number,omitempty"`
	Total     string    `json:"total,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ListQuery filters the order listing endpoint.
type ListQuery struct {
	Status        order.Status
	ExternalID    string
	Page          int
	PerPage       int
	Sort          string
	SortDirection string
}

// Client is the Order Management System contract: a thin, typed pass-through
// to the external ledger of orders, invoices and customers. Every call is
// mirrored into the audit log by the implementation regardless of outcome.
type Client interface {
	CreateOrder(ctx context.Context, customerID string, o *order.Order) (*order.Order, error)
	UpdateOrder(ctx context.Context, customerID, orderID string, o *order.Order) (*order.Order, error)
	GetOrder(ctx context.Context, customerID, orderID string) (*order.Order, error)
	DeleteOrder(ctx context.Context, customerID, orderID string) error
	ListOrders(ctx context.Context, customerID string, q ListQuery) ([]order.Order, error)

	// CreateCustomer provisions an OMS customer record for a store and
	// returns its id.
	CreateCustomer(ctx context.Context, st *store.Store) (string, error)

	CreateInvoice(ctx context.Context, customerID, orderID string) (*Invoice, error)
	MarkInvoiceSent(ctx context.Context, customerID, invoiceID string) error
}
