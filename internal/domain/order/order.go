package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/domain/shared/valueobject"
)

// Item is a single order line. TaxClass is the catalog tax classification the
// line arrives with; once a tax row has been resolved it is cleared and
// replaced by TaxID.
type Item struct {
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	PurchaseRate decimal.Decimal `json:"purchaseRate"`
	Weight       decimal.Decimal `json:"weight,omitempty"`
	TaxID        string          `json:"taxId,omitempty"`
	TaxClass     string          `json:"taxClass,omitempty"`
}

// Subtotal returns rate * quantity for the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Rate.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ResolveTax replaces the tax class attribute with a resolved tax row id.
func (i *Item) ResolveTax(taxID string) {
	i.TaxID = taxID
	i.TaxClass = ""
}

// Order is the normalized customer-facing order. The OMS ledger is the
// system of record; this struct is the shape the pipeline builds, sends and
// receives.
type Order struct {
	ID              string `json:"id,omitempty"`
	ExternalID      string `json:"externalId"`
	ExternalInvoice string `json:"externalInvoice,omitempty"`
	StoreURL        string `json:"storeUrl,omitempty"`

	Status Status `json:"status"`
	Items  []Item `json:"items"`

	Shipping valueobject.Address `json:"shipping"`
	Billing  valueobject.Address `json:"billing"`

	ShipmentCourier string          `json:"shipmentCourier,omitempty"`
	ShippingCharge  decimal.Decimal `json:"shippingCharge"`

	TaxTotal       decimal.Decimal `json:"taxTotal"`
	IsInclusiveTax bool            `json:"isInclusiveTax"`

	Discount decimal.Decimal `json:"discount"`
	Coupon   string          `json:"coupon,omitempty"`

	Adjustment            decimal.Decimal `json:"adjustment"`
	AdjustmentDescription string          `json:"adjustmentDescription,omitempty"`

	Total    decimal.Decimal `json:"total"`
	Warnings []Warning       `json:"warnings,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	InvoiceID string    `json:"invoiceId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// New builds an order shell for the create flow. Items, charges and totals
// are filled in by the pipeline as collaborators respond.
func New(externalID, storeURL string, shipping, billing valueobject.Address) (*Order, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "Order externalId is required")
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	return &Order{
		ExternalID: externalID,
		StoreURL:   storeURL,
		Status:     StatusDraft,
		Shipping:   shipping,
		Billing:    billing,
		CreatedAt:  time.Now(),
	}, nil
}

// RecalculateTotal restores the order total invariant:
//
//	total = sum(item.rate * item.quantity) + (inclusive tax ? 0 : taxTotal)
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	if !o.IsInclusiveTax {
		total = total.Add(o.TaxTotal)
	}
	o.Total = total
}

// GrandTotal is the amount the storefront is charged: total plus shipping and
// processing adjustment, minus any discount.
func (o *Order) GrandTotal() decimal.Decimal {
	return o.Total.Add(o.ShippingCharge).Add(o.Adjustment).Sub(o.Discount)
}

// AddWarning appends a warning, skipping exact duplicates.
func (o *Order) AddWarning(w Warning) {
	for _, existing := range o.Warnings {
		if existing.Code == w.Code && existing.Message == w.Message {
			return
		}
	}
	o.Warnings = append(o.Warnings, w)
}

// AddWarnings appends a batch of warnings.
func (o *Order) AddWarnings(ws []Warning) {
	for _, w := range ws {
		o.AddWarning(w)
	}
}

// HasWarnings reports whether any anomaly was recorded on the order.
func (o *Order) HasWarnings() bool {
	return len(o.Warnings) > 0
}

// ApplyDiscount sets the discount and coupon, rounding the serialized
// discount to 2 decimal places.
func (o *Order) ApplyDiscount(amount decimal.Decimal, coupon string) {
	o.Discount = amount.Round(2)
	o.Coupon = coupon
}

// ItemSKUs returns the SKUs of all lines, in order.
func (o *Order) ItemSKUs() []string {
	skus := make([]string, len(o.Items))
	for i, item := range o.Items {
		skus[i] = item.SKU
	}
	return skus
}
