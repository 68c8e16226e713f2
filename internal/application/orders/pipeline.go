package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaudit "github.com/knawat/mp-backend/internal/application/audit"
	"github.com/knawat/mp-backend/internal/application/discount"
	appshipment "github.com/knawat/mp-backend/internal/application/shipment"
	"github.com/knawat/mp-backend/internal/application/stock"
	"github.com/knawat/mp-backend/internal/application/taxes"
	"github.com/knawat/mp-backend/internal/domain/audit"
	"github.com/knawat/mp-backend/internal/domain/catalog"
	"github.com/knawat/mp-backend/internal/domain/coupon"
	"github.com/knawat/mp-backend/internal/domain/oms"
	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/domain/store"
	"github.com/knawat/mp-backend/internal/domain/subscription"
)

const topicOrder = "order"

// defaultMembership is the tier assumed for stores without an active
// subscription.
const defaultMembership = "free"

// OrderCache is a read-through cache in front of the OMS. Misses return
// (nil, nil); all writes are advisory.
type OrderCache interface {
	GetOrder(ctx context.Context, storeURL, orderID string) (*order.Order, error)
	SetOrder(ctx context.Context, storeURL string, o *order.Order) error
	GetList(ctx context.Context, storeURL string, q oms.ListQuery) ([]order.Order, error)
	SetList(ctx context.Context, storeURL string, q oms.ListQuery, list []order.Order) error
	Invalidate(ctx context.Context, storeURL string) error
}

// InvoiceScheduler enqueues the delayed invoice step for a confirmed order.
type InvoiceScheduler interface {
	Schedule(ctx context.Context, storeURL, orderID string) error
}

// SupportNotifier emails the support team.
type SupportNotifier interface {
	NotifyOperators(ctx context.Context, subject, body string) error
}

// Runner executes a side effect without blocking or failing the caller.
type Runner interface {
	Go(name string, fn func(context.Context) error)
}

// Guard errors surfaced by the update/cancel paths.
var ErrOrderCancelled = shared.NewDomainError("ORDER_ALREADY_CANCELLED", "The order is already cancelled")

// ErrInvoiceSkipped reports that the deferred invoice step found the order no
// longer open. The scheduled task is finished, just not with an invoice.
var ErrInvoiceSkipped = errors.New("invoice skipped: order no longer open")

func errNotMutable(s order.Status) *shared.DomainError {
	return shared.NewDomainErrorf("ORDER_NOT_MUTABLE", "You cannot modify an order in %s state", s.DisplayName())
}

// Deps wires the pipeline's collaborators.
type Deps struct {
	Stores        store.Repository
	Products      catalog.ProductRepository
	Subscriptions subscription.Repository
	Coupons       coupon.Repository
	OMS           oms.Client
	Verifier      *stock.Verifier
	Taxes         *taxes.Resolver
	Rates         *appshipment.RateEngine
	Discounts     *discount.Engine
	Audit         *appaudit.Service
	Cache         OrderCache
	Invoices      InvoiceScheduler
	Notifier      SupportNotifier
	Runner        Runner
	Logger        *zap.Logger
}

// Pipeline orchestrates the order lifecycle: create, update, cancel, get and
// list, with the OMS ledger as the single source of truth.
type Pipeline struct {
	stores        store.Repository
	products      catalog.ProductRepository
	subscriptions subscription.Repository
	coupons       coupon.Repository
	oms           oms.Client
	verifier      *stock.Verifier
	taxes         *taxes.Resolver
	rates         *appshipment.RateEngine
	discounts     *discount.Engine
	audit         *appaudit.Service
	cache         OrderCache
	invoices      InvoiceScheduler
	notifier      SupportNotifier
	runner        Runner
	logger        *zap.Logger
}

// NewPipeline creates the order pipeline.
func NewPipeline(d Deps) *Pipeline {
	return &Pipeline{
		stores:        d.Stores,
		products:      d.Products,
		subscriptions: d.Subscriptions,
		coupons:       d.Coupons,
		oms:           d.OMS,
		verifier:      d.Verifier,
		taxes:         d.Taxes,
		rates:         d.Rates,
		discounts:     d.Discounts,
		audit:         d.Audit,
		cache:         d.Cache,
		invoices:      d.Invoices,
		notifier:      d.Notifier,
		runner:        d.Runner,
		logger:        d.Logger,
	}
}

// Create places a new order for the store. Soft anomalies come back as
// warnings on the returned order; only unusable stock, missing shipment
// routes, validation failures and infrastructure faults abort the flow.
func (p *Pipeline) Create(ctx context.Context, st *store.Store, req CreateOrderRequest) (*order.Order, error) {
	externalID := req.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	} else if existing, err := p.findExisting(ctx, st, externalID); err != nil {
		return nil, err
	} else if existing != nil {
		p.audit.Log(ctx, topicOrder, externalID, "Duplicate submission, returning existing order", st.URL, audit.LevelInfo, 0, nil)
		return existing, nil
	}

	firstOrder := false
	if !st.HasOmsCustomer() {
		customerID, err := p.oms.CreateCustomer(ctx, st)
		if err != nil {
			return nil, err
		}
		st.InternalData.OmsID = customerID
		firstOrder = true
	}

	shipping := req.Shipping.toAddress()
	ord, err := order.New(externalID, st.URL, shipping, shipping)
	if err != nil {
		return nil, err
	}
	ord.ExternalInvoice = req.ExternalInvoice
	ord.Notes = req.Notes
	if req.Billing != nil {
		ord.Billing = req.Billing.toAddress()
	} else {
		ord.AddWarning(order.NewWarning(order.CodeMissingBillingData,
			"Billing address is missing, shipping address has been used instead"))
	}

	p.audit.Log(ctx, topicOrder, externalID, "Order Received", st.URL, audit.LevelInfo, 0, req)

	verified, err := p.verifier.Verify(ctx, req.items())
	if err != nil {
		return nil, err
	}
	if !verified.Usable() {
		p.audit.Log(ctx, topicOrder, externalID, shared.ErrNoUsableItems.Message, st.URL,
			audit.LevelError, order.CodeNotKnawat, verified.Warnings())
		return nil, shared.ErrNoUsableItems
	}
	ord.Items = verified.Items
	ord.AddWarnings(verified.Warnings())

	if err := p.resolveTaxes(ctx, st, ord); err != nil {
		return nil, err
	}

	quote, err := p.rates.Rate(ctx, ord.Items, ord.Shipping.CountryCode(), st, req.ShipmentCourier)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		p.audit.Log(ctx, topicOrder, externalID, shared.ErrNoShipmentRate.Message, st.URL,
			audit.LevelError, 0, map[string]string{"country": ord.Shipping.CountryCode()})
		return nil, shared.ErrNoShipmentRate
	}
	ord.ShipmentCourier = quote.Courier
	ord.ShippingCharge = quote.Cost
	if !quote.CourierMatched {
		ord.AddWarning(order.NewWarning(order.CodeCourierMismatch,
			fmt.Sprintf("Requested shipment method is not available, %s has been used instead", quote.Courier)))
	}

	ord.RecalculateTotal()

	sub, err := p.subscriptions.GetActiveByStore(ctx, st.URL)
	if err != nil {
		return nil, err
	}
	membership := defaultMembership
	if sub != nil {
		membership = sub.Membership
		ord.Adjustment = sub.Adjustment(ord.Total)
		ord.AdjustmentDescription = fmt.Sprintf("%s membership processing fees", sub.Membership)
	}

	outcome, err := p.discounts.Discount(ctx, req.Coupon, membership, discount.Expenses{
		Total:      ord.Total,
		Shipping:   ord.ShippingCharge,
		Tax:        ord.TaxTotal,
		Adjustment: ord.Adjustment,
	}, req.Coupon == "")
	if err != nil {
		return nil, err
	}
	ord.ApplyDiscount(outcome.Discount, outcome.Coupon)
	ord.AddWarnings(outcome.Warnings)

	if status, ok := order.StatusFromPublic(req.Status); ok {
		ord.Status = status
	}

	created, err := p.oms.CreateOrder(ctx, st.InternalData.OmsID, ord)
	if err != nil {
		p.audit.Log(ctx, topicOrder, externalID, "OMS rejected order creation", st.URL,
			audit.LevelError, 0, map[string]string{"error": err.Error()})
		return nil, err
	}
	ord.ID = created.ID
	if created.Status.IsValid() {
		ord.Status = created.Status
	}
	if !created.CreatedAt.IsZero() {
		ord.CreatedAt = created.CreatedAt
	}

	p.audit.Log(ctx, topicOrder, externalID, "Order Created", st.URL, audit.LevelInfo, 0, ord)
	p.afterCreate(st, ord, outcome, firstOrder)
	return ord, nil
}

// findExisting treats a re-submitted externalId as an idempotent lookup.
func (p *Pipeline) findExisting(ctx context.Context, st *store.Store, externalID string) (*order.Order, error) {
	if !st.HasOmsCustomer() {
		return nil, nil
	}
	existing, err := p.oms.ListOrders(ctx, st.InternalData.OmsID, oms.ListQuery{ExternalID: externalID, PerPage: 1})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return &existing[0], nil
}

var oneHundred = decimal.NewFromInt(100)

// resolveTaxes runs the tax resolver across all lines concurrently and folds
// the results into the order. Line order does not affect the outcome.
func (p *Pipeline) resolveTaxes(ctx context.Context, st *store.Store, ord *order.Order) error {
	type outcome struct {
		res taxes.Resolution
		err error
	}
	outcomes := make([]outcome, len(ord.Items))

	var wg sync.WaitGroup
	for i := range ord.Items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.taxes.Resolve(ctx, st, ord.Items[i])
			outcomes[i] = outcome{res: res, err: err}
		}()
	}
	wg.Wait()

	taxTotal := decimal.Zero
	for i, out := range outcomes {
		if out.err != nil {
			return out.err
		}
		item := &ord.Items[i]
		if !out.res.Applied() {
			switch out.res.Code {
			case order.CodeMissingStoreAddr, order.CodeNoTaxForCountry:
				// Store-level signals; one warning covers the whole order.
				ord.AddWarning(order.NewWarning(out.res.Code, out.res.Message))
			default:
				ord.AddWarning(out.res.Warning(item.SKU))
			}
			continue
		}
		row := out.res.Tax
		item.ResolveTax(row.OmsID)
		taxTotal = taxTotal.Add(item.Subtotal().Mul(row.Percentage).Div(oneHundred))
		if row.IsInclusive {
			ord.IsInclusiveTax = true
		}
	}
	ord.TaxTotal = taxTotal
	return nil
}

// afterCreate fires the best-effort side effects of a successful creation.
// None of them can fail the order; the OMS record is already authoritative.
func (p *Pipeline) afterCreate(st *store.Store, ord *order.Order, outcome discount.Outcome, firstOrder bool) {
	storeURL := st.URL
	if firstOrder {
		omsID := st.InternalData.OmsID
		p.runner.Go("store-save-oms-id", func(ctx context.Context) error {
			return p.stores.SaveOmsID(ctx, storeURL, omsID)
		})
	}
	if outcome.Coupon != "" && !outcome.Auto {
		code := outcome.Coupon
		p.runner.Go("coupon-increment-use", func(ctx context.Context) error {
			return p.coupons.IncrementUse(ctx, code)
		})
	}
	p.runner.Go("crm-last-order-date", func(ctx context.Context) error {
		return p.stores.TouchLastOrderDate(ctx, storeURL, time.Now())
	})
	for _, item := range ord.Items {
		sku, qty := item.SKU, item.Quantity
		p.runner.Go("product-sales-counter", func(ctx context.Context) error {
			return p.products.IncrementSalesQuantity(ctx, sku, qty)
		})
	}
	p.runner.Go("order-cache-invalidate", func(ctx context.Context) error {
		return p.cache.Invalidate(ctx, storeURL)
	})
	if ord.HasWarnings() {
		subject := fmt.Sprintf("Order %s created with warnings", ord.ExternalID)
		body := warningsDigest(ord)
		p.runner.Go("support-warnings-digest", func(ctx context.Context) error {
			return p.notifier.NotifyOperators(ctx, subject, body)
		})
	}

	if ord.Status == order.StatusOpen && !ord.HasWarnings() {
		orderID := ord.ID
		p.runner.Go("invoice-schedule", func(ctx context.Context) error {
			return p.invoices.Schedule(ctx, storeURL, orderID)
		})
	}

	snapshot := *ord
	p.runner.Go("order-cache-set", func(ctx context.Context) error {
		return p.cache.SetOrder(ctx, storeURL, &snapshot)
	})
}

func warningsDigest(ord *order.Order) string {
	body := fmt.Sprintf("Order %s (store %s) produced %d warning(s):\n", ord.ExternalID, ord.StoreURL, len(ord.Warnings))
	for _, w := range ord.Warnings {
		body += fmt.Sprintf("- [%d] %s", w.Code, w.Message)
		if len(w.SKUs) > 0 {
			body += fmt.Sprintf(" (%v)", w.SKUs)
		}
		body += "\n"
	}
	return body
}

// Update mutates a draft or open order. A status change to cancelled/void is
// delegated to Cancel; anything else re-runs the pricing collaborators over
// the new item set and pushes the merged result to the OMS.
func (p *Pipeline) Update(ctx context.Context, st *store.Store, orderID string, req UpdateOrderRequest) (*order.Order, error) {
	current, err := p.oms.GetOrder(ctx, st.InternalData.OmsID, orderID)
	if err != nil {
		return nil, err
	}
	if current.Status == order.StatusVoid {
		return nil, ErrOrderCancelled
	}
	if !current.Status.Mutable() {
		return nil, errNotMutable(current.Status)
	}
	if status, ok := order.StatusFromPublic(req.Status); ok && status == order.StatusVoid {
		return p.Cancel(ctx, st, orderID)
	}

	if req.Shipping != nil {
		shipping := req.Shipping.toAddress()
		if err := shipping.Validate(); err != nil {
			return nil, err
		}
		current.Shipping = shipping
	}
	if req.Billing != nil {
		current.Billing = req.Billing.toAddress()
	}
	if req.Notes != "" {
		current.Notes = req.Notes
	}
	if status, ok := order.StatusFromPublic(req.Status); ok {
		current.Status = status
	}

	if len(req.Items) > 0 {
		verified, err := p.verifier.Verify(ctx, req.items())
		if err != nil {
			return nil, err
		}
		if !verified.Usable() {
			p.audit.Log(ctx, topicOrder, current.ExternalID, shared.ErrNoUsableItems.Message, st.URL,
				audit.LevelError, order.CodeNotKnawat, verified.Warnings())
			return nil, shared.ErrNoUsableItems
		}
		current.Items = verified.Items
		current.AddWarnings(verified.Warnings())

		if err := p.resolveTaxes(ctx, st, current); err != nil {
			return nil, err
		}

		requestedCourier := req.ShipmentCourier
		if requestedCourier == "" {
			requestedCourier = current.ShipmentCourier
		}
		quote, err := p.rates.Rate(ctx, current.Items, current.Shipping.CountryCode(), st, requestedCourier)
		if err != nil {
			return nil, err
		}
		if quote == nil {
			return nil, shared.ErrNoShipmentRate
		}
		current.ShipmentCourier = quote.Courier
		current.ShippingCharge = quote.Cost
		if !quote.CourierMatched {
			current.AddWarning(order.NewWarning(order.CodeCourierMismatch,
				fmt.Sprintf("Requested shipment method is not available, %s has been used instead", quote.Courier)))
		}

		current.RecalculateTotal()

		// Re-apply the existing coupon against the new total. Rates, not
		// purchase rates, price the discount base on every path.
		code := req.Coupon
		if code == "" {
			code = current.Coupon
		}
		if code != "" {
			sub, err := p.subscriptions.GetActiveByStore(ctx, st.URL)
			if err != nil {
				return nil, err
			}
			membership := defaultMembership
			if sub != nil {
				membership = sub.Membership
			}
			outcome, err := p.discounts.Discount(ctx, code, membership, discount.Expenses{
				Total:      current.Total,
				Shipping:   current.ShippingCharge,
				Tax:        current.TaxTotal,
				Adjustment: current.Adjustment,
			}, false)
			if err != nil {
				return nil, err
			}
			current.ApplyDiscount(outcome.Discount, outcome.Coupon)
			current.AddWarnings(outcome.Warnings)
		}
	}

	current.UpdatedAt = time.Now()
	updated, err := p.oms.UpdateOrder(ctx, st.InternalData.OmsID, orderID, current)
	if err != nil {
		p.audit.Log(ctx, topicOrder, current.ExternalID, "OMS rejected order update", st.URL,
			audit.LevelError, 0, map[string]string{"error": err.Error()})
		return nil, err
	}
	if updated.Status.IsValid() {
		current.Status = updated.Status
	}

	p.audit.Log(ctx, topicOrder, current.ExternalID, "Order Updated", st.URL, audit.LevelInfo, 0, current)
	p.invalidateAndCache(st.URL, current)
	return current, nil
}

// Cancel voids a draft or open order via OMS deletion.
func (p *Pipeline) Cancel(ctx context.Context, st *store.Store, orderID string) (*order.Order, error) {
	current, err := p.oms.GetOrder(ctx, st.InternalData.OmsID, orderID)
	if err != nil {
		return nil, err
	}
	if current.Status == order.StatusVoid {
		return nil, ErrOrderCancelled
	}
	if !current.Status.Mutable() {
		return nil, errNotMutable(current.Status)
	}

	if err := p.oms.DeleteOrder(ctx, st.InternalData.OmsID, orderID); err != nil {
		p.audit.Log(ctx, topicOrder, current.ExternalID, "OMS rejected order cancellation", st.URL,
			audit.LevelError, 0, map[string]string{"error": err.Error()})
		return nil, err
	}
	current.Status = order.StatusVoid
	current.UpdatedAt = time.Now()

	p.audit.Log(ctx, topicOrder, current.ExternalID, "Order Cancelled", st.URL, audit.LevelInfo, 0, nil)
	p.invalidateAndCache(st.URL, current)
	return current, nil
}

// Get reads one order through the cache.
func (p *Pipeline) Get(ctx context.Context, st *store.Store, orderID string) (*order.Order, error) {
	if cached, err := p.cache.GetOrder(ctx, st.URL, orderID); err != nil {
		p.logger.Warn("order cache read failed", zap.String("store", st.URL), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	ord, err := p.oms.GetOrder(ctx, st.InternalData.OmsID, orderID)
	if err != nil {
		return nil, err
	}
	storeURL := st.URL
	snapshot := *ord
	p.runner.Go("order-cache-set", func(ctx context.Context) error {
		return p.cache.SetOrder(ctx, storeURL, &snapshot)
	})
	return ord, nil
}

// List reads the store's orders through the cache.
func (p *Pipeline) List(ctx context.Context, st *store.Store, req ListOrdersRequest) ([]order.Order, error) {
	q := oms.ListQuery{
		ExternalID:    req.ExternalID,
		Page:          req.Page,
		PerPage:       req.PerPage,
		Sort:          req.Sort,
		SortDirection: req.SortDirection,
	}
	if status, ok := order.StatusFromPublic(req.Status); ok {
		q.Status = status
	}

	if cached, err := p.cache.GetList(ctx, st.URL, q); err != nil {
		p.logger.Warn("order list cache read failed", zap.String("store", st.URL), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	list, err := p.oms.ListOrders(ctx, st.InternalData.OmsID, q)
	if err != nil {
		return nil, err
	}
	storeURL := st.URL
	snapshot := list
	p.runner.Go("order-list-cache-set", func(ctx context.Context) error {
		return p.cache.SetList(ctx, storeURL, q, snapshot)
	})
	return list, nil
}

// ProcessInvoice runs the deferred invoice step for one order. The worker
// calls this once per scheduled task; a cancelled or still-draft order is
// skipped, not failed.
func (p *Pipeline) ProcessInvoice(ctx context.Context, storeURL, orderID string) error {
	st, err := p.stores.Get(ctx, storeURL)
	if err != nil {
		return err
	}
	ord, err := p.oms.GetOrder(ctx, st.InternalData.OmsID, orderID)
	if err != nil {
		return err
	}
	if ord.Status != order.StatusOpen {
		p.audit.Log(ctx, topicOrder, ord.ExternalID, "Invoice skipped, order no longer open", storeURL,
			audit.LevelInfo, 0, map[string]string{"status": string(ord.Status)})
		return ErrInvoiceSkipped
	}

	inv, err := p.oms.CreateInvoice(ctx, st.InternalData.OmsID, orderID)
	if err != nil {
		return err
	}
	if err := p.oms.MarkInvoiceSent(ctx, st.InternalData.OmsID, inv.ID); err != nil {
		return err
	}

	ord.Status = order.StatusInvoiced
	ord.InvoiceID = inv.ID
	p.audit.Log(ctx, topicOrder, ord.ExternalID, "Invoice Created", storeURL, audit.LevelInfo, 0, inv)
	p.invalidateAndCache(storeURL, ord)
	return nil
}

// invalidateAndCache drops the store's cached listings and re-caches the
// fresh order snapshot, best-effort.
func (p *Pipeline) invalidateAndCache(storeURL string, ord *order.Order) {
	snapshot := *ord
	p.runner.Go("order-cache-refresh", func(ctx context.Context) error {
		if err := p.cache.Invalidate(ctx, storeURL); err != nil {
			return err
		}
		return p.cache.SetOrder(ctx, storeURL, &snapshot)
	})
}
