package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaudit "github.com/knawat/mp-backend/internal/application/audit"
	"github.com/knawat/mp-backend/internal/application/discount"
	"github.com/knawat/mp-backend/internal/application/orders"
	appshipment "github.com/knawat/mp-backend/internal/application/shipment"
	"github.com/knawat/mp-backend/internal/application/stock"
	"github.com/knawat/mp-backend/internal/application/taxes"
	"github.com/knawat/mp-backend/internal/domain/audit"
	"github.com/knawat/mp-backend/internal/domain/catalog"
	"github.com/knawat/mp-backend/internal/domain/coupon"
	domoms "github.com/knawat/mp-backend/internal/domain/oms"
	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/domain/shipment"
	"github.com/knawat/mp-backend/internal/domain/store"
	"github.com/knawat/mp-backend/internal/domain/subscription"
	"github.com/knawat/mp-backend/internal/domain/tax"
	"github.com/knawat/mp-backend/internal/interfaces/http/dto"
	"github.com/knawat/mp-backend/internal/interfaces/http/middleware"
)

// Lightweight fakes wiring a real pipeline behind the HTTP surface.

type stubStores struct{ st *store.Store }

func (s *stubStores) FindByConsumerKey(_ context.Context, key string) (*store.Store, error) {
	if s.st != nil && s.st.ConsumerKey == key {
		return s.st, nil
	}
	return nil, shared.ErrNotFound
}
func (s *stubStores) Get(context.Context, string) (*store.Store, error)   { return s.st, nil }
func (s *stubStores) SaveOmsID(context.Context, string, string) error     { return nil }
func (s *stubStores) TouchLastOrderDate(context.Context, string, time.Time) error {
	return nil
}

type stubProducts struct{ products []catalog.Product }

func (s *stubProducts) FindBySKUs(context.Context, []string) ([]catalog.Product, error) {
	return s.products, nil
}
func (s *stubProducts) IncrementSalesQuantity(context.Context, string, int) error { return nil }

type stubSubscriptions struct{}

func (stubSubscriptions) GetActiveByStore(context.Context, string) (*subscription.Subscription, error) {
	return nil, nil
}

type stubCoupons struct{}

func (stubCoupons) Get(context.Context, string) (*coupon.Coupon, error) {
	return nil, coupon.ErrCouponNotFound
}
func (stubCoupons) IncrementUse(context.Context, string) error { return nil }
func (stubCoupons) FindAutoForMembership(context.Context, string) ([]coupon.Coupon, error) {
	return nil, nil
}

type stubTaxes struct{}

func (stubTaxes) FindByCountryAndClass(context.Context, string, string) (*tax.Tax, error) {
	return nil, nil
}

type stubPolicies struct{ policies []shipment.Policy }

func (s *stubPolicies) FindByCountry(context.Context, string) ([]shipment.Policy, error) {
	return s.policies, nil
}

type stubOMS struct{ created *order.Order }

func (s *stubOMS) CreateOrder(_ context.Context, _ string, o *order.Order) (*order.Order, error) {
	return s.created, nil
}
func (s *stubOMS) UpdateOrder(context.Context, string, string, *order.Order) (*order.Order, error) {
	return nil, shared.ErrNotFound
}
func (s *stubOMS) GetOrder(context.Context, string, string) (*order.Order, error) {
	return nil, shared.ErrNotFound
}
func (s *stubOMS) DeleteOrder(context.Context, string, string) error { return nil }
func (s *stubOMS) ListOrders(context.Context, string, domoms.ListQuery) ([]order.Order, error) {
	return nil, nil
}
func (s *stubOMS) CreateCustomer(context.Context, *store.Store) (string, error) {
	return "cust-1", nil
}
func (s *stubOMS) CreateInvoice(context.Context, string, string) (*domoms.Invoice, error) {
	return nil, nil
}
func (s *stubOMS) MarkInvoiceSent(context.Context, string, string) error { return nil }

type stubCache struct{}

func (stubCache) GetOrder(context.Context, string, string) (*order.Order, error) { return nil, nil }
func (stubCache) SetOrder(context.Context, string, *order.Order) error           { return nil }
func (stubCache) GetList(context.Context, string, domoms.ListQuery) ([]order.Order, error) {
	return nil, nil
}
func (stubCache) SetList(context.Context, string, domoms.ListQuery, []order.Order) error {
	return nil
}
func (stubCache) Invalidate(context.Context, string) error { return nil }

type stubScheduler struct{}

func (stubScheduler) Schedule(context.Context, string, string) error { return nil }

type stubNotifier struct{}

func (stubNotifier) NotifyOperators(context.Context, string, string) error { return nil }

type inlineRunner struct{}

func (inlineRunner) Go(_ string, fn func(context.Context) error) {
	_ = fn(context.Background())
}

type stubAuditRepo struct{}

func (stubAuditRepo) Add(context.Context, *audit.Entry) error { return nil }
func (stubAuditRepo) Find(context.Context, audit.Query) ([]audit.Entry, int64, error) {
	return nil, 0, nil
}

func newOrdersTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()

	st := &store.Store{
		URL:            "https://shop.example.com",
		ConsumerKey:    "ck_live",
		ConsumerSecret: "cs_live",
		Active:         true,
		InternalData:   store.InternalData{OmsID: "cust-1"},
	}
	st.Billing.Country = "TR"

	stores := &stubStores{st: st}
	products := &stubProducts{products: []catalog.Product{{
		SKU: "P-100",
		Variations: []catalog.Variation{{
			SKU:           "ABC123",
			Quantity:      5,
			SalePrice:     decimal.NewFromInt(20),
			PurchasePrice: decimal.NewFromInt(12),
			Weight:        decimal.NewFromFloat(0.5),
		}},
	}}}
	policies := &stubPolicies{policies: []shipment.Policy{{
		Name:      "eu-standard",
		Countries: []string{"DE"},
		Rules: []shipment.Rule{{
			Courier:  "DHL",
			UnitsMin: decimal.Zero,
			UnitsMax: decimal.NewFromInt(100),
			Type:     shipment.RuleTypeWeight,
			Cost:     decimal.NewFromInt(10),
		}},
	}}}
	omsClient := &stubOMS{created: &order.Order{ID: "so-1001", Status: order.StatusOpen}}

	log := zap.NewNop()
	auditSvc := appaudit.NewService(stubAuditRepo{}, log)
	runner := inlineRunner{}

	pipeline := orders.NewPipeline(orders.Deps{
		Stores:        stores,
		Products:      products,
		Subscriptions: stubSubscriptions{},
		Coupons:       stubCoupons{},
		OMS:           omsClient,
		Verifier:      stock.NewVerifier(products),
		Taxes:         taxes.NewResolver(stubTaxes{}, nil, stubNotifier{}, runner, log),
		Rates:         appshipment.NewRateEngine(policies),
		Discounts:     discount.NewEngine(stubCoupons{}, log),
		Audit:         auditSvc,
		Cache:         stubCache{},
		Invoices:      stubScheduler{},
		Notifier:      stubNotifier{},
		Runner:        runner,
		Logger:        log,
	})

	router := gin.New()
	group := router.Group("", middleware.StoreAuth(stores, log))
	NewOrdersHandler(pipeline).RegisterRoutes(group)
	return router, st
}

func TestOrdersCreate(t *testing.T) {
	router, _ := newOrdersTestRouter(t)

	body := `{
		"items": [{"sku": "ABC123", "quantity": 2}],
		"shipping": {
			"first_name": "Ada", "last_name": "Yilmaz",
			"address_1": "Unter den Linden 5", "city": "Berlin",
			"country": "DE", "email": "ada@example.com"
		},
		"billing": {
			"first_name": "Ada", "last_name": "Yilmaz",
			"address_1": "Unter den Linden 5", "city": "Berlin",
			"country": "DE", "email": "ada@example.com"
		},
		"status": "processing"
	}`

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("ck_live", "cs_live")
	router.ServeHTTP(w, req)

	// Successful creation responds 200, not 201.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "so-1001", data["id"])
}

func TestOrdersCreateRejectsInvalidPayload(t *testing.T) {
	router, _ := newOrdersTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(`{"items": []}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("ck_live", "cs_live")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fail", resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, dto.ErrCodeValidation, resp.Errors[0].Code)
}
