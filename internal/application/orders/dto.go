package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/shared/valueobject"
)

// AddressRequest is a storefront-supplied postal address.
type AddressRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Company    string `json:"company"`
	Address1   string `json:"address_1" binding:"required"`
	Address2   string `json:"address_2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" binding:"required,len=2"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
}

func (r AddressRequest) toAddress() valueobject.Address {
	return valueobject.Address{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Company:    r.Company,
		Address1:   r.Address1,
		Address2:   r.Address2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Email:      r.Email,
		Phone:      r.Phone,
	}
}

// ItemRequest is one requested order line. TaxClass is the storefront's tax
// classification for the product, when it has one.
type ItemRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	TaxClass string `json:"taxClass"`
}

// CreateOrderRequest is the payload for placing a new order.
type CreateOrderRequest struct {
	ExternalID      string          `json:"externalId"`
	ExternalInvoice string          `json:"externalInvoice"`
	Status          string          `json:"status"`
	Items           []ItemRequest   `json:"items" binding:"required,min=1,dive"`
	Shipping        AddressRequest  `json:"shipping" binding:"required"`
	Billing         *AddressRequest `json:"billing"`
	ShipmentCourier string          `json:"shipmentCourier"`
	Coupon          string          `json:"coupon"`
	Notes           string          `json:"notes"`
}

func (r CreateOrderRequest) items() []order.Item {
	return toItems(r.Items)
}

// UpdateOrderRequest is the payload for mutating an existing order. Nil/empty
// fields are left untouched.
type UpdateOrderRequest struct {
	Status          string          `json:"status"`
	Items           []ItemRequest   `json:"items" binding:"omitempty,min=1,dive"`
	Shipping        *AddressRequest `json:"shipping"`
	Billing         *AddressRequest `json:"billing"`
	ShipmentCourier string          `json:"shipmentCourier"`
	Coupon          string          `json:"coupon"`
	Notes           string          `json:"notes"`
}

func (r UpdateOrderRequest) items() []order.Item {
	return toItems(r.Items)
}

func toItems(reqs []ItemRequest) []order.Item {
	items := make([]order.Item, len(reqs))
	for i, it := range reqs {
		items[i] = order.Item{SKU: it.SKU, Quantity: it.Quantity, TaxClass: it.TaxClass}
	}
	return items
}

// ListOrdersRequest carries the order listing query parameters.
type ListOrdersRequest struct {
	Status        string `form:"status"`
	ExternalID    string `form:"externalId"`
	Page          int    `form:"page" binding:"omitempty,gte=1"`
	PerPage       int    `form:"perPage" binding:"omitempty,gte=1,lte=100"`
	Sort          string `form:"sort"`
	SortDirection string `form:"sortDir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse is a sanitized order line.
type ItemResponse struct {
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	PurchaseRate decimal.Decimal `json:"purchaseRate"`
	TaxID        string          `json:"taxId,omitempty"`
}

// OrderResponse is the public order representation: internal bookkeeping is
// stripped and the status is translated to the storefront vocabulary.
type OrderResponse struct {
	ID              string                `json:"id"`
	ExternalID      string                `json:"externalId"`
	ExternalInvoice string                `json:"externalInvoice,omitempty"`
	Status          string                `json:"status"`
	Items           []ItemResponse        `json:"items"`
	Shipping        valueobject.Address   `json:"shipping"`
	Billing         *valueobject.Address  `json:"billing,omitempty"`
	ShipmentCourier string                `json:"shipmentCourier,omitempty"`
	ShippingCharge  decimal.Decimal       `json:"shippingCharge"`
	TaxTotal        decimal.Decimal       `json:"taxTotal"`
	IsInclusiveTax  bool                  `json:"isInclusiveTax"`
	Discount        decimal.Decimal       `json:"discount"`
	Coupon          string                `json:"coupon,omitempty"`
	Adjustment      decimal.Decimal       `json:"adjustment"`
	AdjustmentDesc  string                `json:"adjustmentDescription,omitempty"`
	Total           decimal.Decimal       `json:"total"`
	InvoiceID       string                `json:"invoiceId,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"createdAt,omitempty"`
	UpdatedAt       time.Time             `json:"updatedAt,omitempty"`
}

// ToOrderResponse sanitizes an order for the public surface.
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			SKU:          it.SKU,
			Quantity:     it.Quantity,
			Rate:         it.Rate,
			PurchaseRate: it.PurchaseRate,
			TaxID:        it.TaxID,
		}
	}
	resp := &OrderResponse{
		ID:              o.ID,
		ExternalID:      o.ExternalID,
		ExternalInvoice: o.ExternalInvoice,
		Status:          o.Status.Public(),
		Items:           items,
		Shipping:        o.Shipping,
		ShipmentCourier: o.ShipmentCourier,
		ShippingCharge:  o.ShippingCharge,
		TaxTotal:        o.TaxTotal,
		IsInclusiveTax:  o.IsInclusiveTax,
		Discount:        o.Discount,
		Coupon:          o.Coupon,
		Adjustment:      o.Adjustment,
		AdjustmentDesc:  o.AdjustmentDescription,
		Total:           o.Total,
		InvoiceID:       o.InvoiceID,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if !o.Billing.IsZero() {
		billing := o.Billing
		resp.Billing = &billing
	}
	return resp
}

// ToOrderResponses sanitizes a list of orders.
func ToOrderResponses(list []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(list))
	for i := range list {
		out[i] = *ToOrderResponse(&list[i])
	}
	return out
}
