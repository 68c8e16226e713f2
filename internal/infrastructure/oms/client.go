package oms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	appaudit "github.com/knawat/mp-backend/internal/application/audit"
	"github.com/knawat/mp-backend/internal/domain/audit"
	"github.com/knawat/mp-backend/internal/domain/oms"
	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/store"
)

const topicOMS = "oms"

// HTTPClient implements oms.Client against the OMS REST API. Every call is
// mirrored into the audit log regardless of outcome so support can replay a
// store's OMS traffic without access to the ledger itself.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	audit      *appaudit.Service
	logger     *zap.Logger
}

// NewHTTPClient creates an OMS client with the given configuration.
func NewHTTPClient(cfg Config, auditSvc *appaudit.Service, logger *zap.Logger) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.timeout()},
		audit:      auditSvc,
		logger:     logger,
	}, nil
}

// orderEnvelope wraps single-order responses.
type orderEnvelope struct {
	SalesOrder *order.Order `json:"salesorder"`
}

// orderListEnvelope wraps listing responses.
type orderListEnvelope struct {
	SalesOrders []order.Order `json:"salesorders"`
}

// customerEnvelope wraps customer responses.
type customerEnvelope struct {
	Customer struct {
		ID string `json:"id"`
	} `json:"customer"`
}

// invoiceEnvelope wraps invoice responses.
type invoiceEnvelope struct {
	Invoice *oms.Invoice `json:"invoice"`
}

// errorEnvelope is the OMS rejection body.
type errorEnvelope struct {
	Message string `json:"message"`
}

// CreateOrder submits a new sales order to the ledger.
func (c *HTTPClient) CreateOrder(ctx context.Context, customerID string, o *order.Order) (*order.Order, error) {
	path := fmt.Sprintf("/customers/%s/salesorders", url.PathEscape(customerID))
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, o, o.ExternalID)
	if err != nil {
		return nil, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("oms: decode create order response: %w", err)
	}
	return envelope.SalesOrder, nil
}

// UpdateOrder replaces a sales order in the ledger.
func (c *HTTPClient) UpdateOrder(ctx context.Context, customerID, orderID string, o *order.Order) (*order.Order, error) {
	path := fmt.Sprintf("/customers/%s/salesorders/%s", url.PathEscape(customerID), url.PathEscape(orderID))
	body, err := c.doRequest(ctx, http.MethodPut, path, nil, o, orderID)
	if err != nil {
		return nil, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("oms: decode update order response: %w", err)
	}
	return envelope.SalesOrder, nil
}

// GetOrder fetches one sales order.
func (c *HTTPClient) GetOrder(ctx context.Context, customerID, orderID string) (*order.Order, error) {
	path := fmt.Sprintf("/customers/%s/salesorders/%s", url.PathEscape(customerID), url.PathEscape(orderID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil, orderID)
	if err != nil {
		return nil, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("oms: decode get order response: %w", err)
	}
	return envelope.SalesOrder, nil
}

// DeleteOrder removes a sales order from the ledger.
func (c *HTTPClient) DeleteOrder(ctx context.Context, customerID, orderID string) error {
	path := fmt.Sprintf("/customers/%s/salesorders/%s", url.PathEscape(customerID), url.PathEscape(orderID))
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, orderID)
	return err
}

// ListOrders fetches the customer's sales orders matching the query.
func (c *HTTPClient) ListOrders(ctx context.Context, customerID string, q oms.ListQuery) ([]order.Order, error) {
	query := url.Values{}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	if q.ExternalID != "" {
		query.Set("external_id", q.ExternalID)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
		query.Set("sort_direction", q.SortDirection)
	}

	path := fmt.Sprintf("/customers/%s/salesorders", url.PathEscape(customerID))
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil, customerID)
	if err != nil {
		return nil, err
	}

	var envelope orderListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("oms: decode list orders response: %w", err)
	}
	return envelope.SalesOrders, nil
}

// CreateCustomer provisions an OMS customer record for a store.
func (c *HTTPClient) CreateCustomer(ctx context.Context, st *store.Store) (string, error) {
	payload := map[string]any{
		"name":    st.Name,
		"url":     st.URL,
		"email":   st.Billing.Email,
		"country": st.Billing.CountryCode(),
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/customers", nil, payload, st.URL)
	if err != nil {
		return "", err
	}

	var envelope customerEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("oms: decode create customer response: %w", err)
	}
	return envelope.Customer.ID, nil
}

// CreateInvoice creates an invoice from an open sales order.
func (c *HTTPClient) CreateInvoice(ctx context.Context, customerID, orderID string) (*oms.Invoice, error) {
	path := fmt.Sprintf("/customers/%s/invoices", url.PathEscape(customerID))
	payload := map[string]string{"orderId": orderID}
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, payload, orderID)
	if err != nil {
		return nil, err
	}

	var envelope invoiceEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("oms: decode create invoice response: %w", err)
	}
	return envelope.Invoice, nil
}

// MarkInvoiceSent marks an invoice as delivered to the storefront.
func (c *HTTPClient) MarkInvoiceSent(ctx context.Context, customerID, invoiceID string) error {
	path := fmt.Sprintf("/customers/%s/invoices/%s/sent", url.PathEscape(customerID), url.PathEscape(invoiceID))
	_, err := c.doRequest(ctx, http.MethodPost, path, nil, nil, invoiceID)
	return err
}

// doRequest performs one OMS call, enforcing the body cap and translating
// non-2xx responses into oms.StatusError.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, query url.Values, payload any, topicID string) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("oms: encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("oms: create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.mirror(ctx, method, path, topicID, 0, err.Error())
		return nil, fmt.Errorf("oms: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.maxBody()))
	if err != nil {
		c.mirror(ctx, method, path, topicID, resp.StatusCode, err.Error())
		return nil, fmt.Errorf("oms: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		message := http.StatusText(resp.StatusCode)
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
			message = envelope.Message
		}
		c.mirror(ctx, method, path, topicID, resp.StatusCode, message)
		return nil, &oms.StatusError{StatusCode: resp.StatusCode, Message: message}
	}

	c.mirror(ctx, method, path, topicID, resp.StatusCode, "")
	return body, nil
}

// mirror writes one audit entry per OMS call.
func (c *HTTPClient) mirror(ctx context.Context, method, path, topicID string, statusCode int, errMessage string) {
	level := audit.LevelInfo
	var payload any
	if errMessage != "" {
		level = audit.LevelError
		payload = map[string]string{"error": errMessage}
	}
	c.audit.Log(ctx, topicOMS, topicID, fmt.Sprintf("%s %s", method, path), "", level, statusCode, payload)
}

// Ensure HTTPClient implements oms.Client
var _ oms.Client = (*HTTPClient)(nil)
