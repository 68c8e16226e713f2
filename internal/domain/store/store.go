package store

import (
	"context"
	"time"

	"github.com/knawat/mp-backend/internal/domain/shared/valueobject"
)

// InternalData holds marketplace-side bookkeeping that is never exposed to
// the storefront, most importantly the lazily provisioned OMS customer id.
type InternalData struct {
	OmsID         string     `json:"omsId,omitempty"`
	LastOrderDate *time.Time `json:"lastOrderDate,omitempty"`
}

// Store is a tenant storefront integrated with the marketplace. The store URL
// is its identity across all services.
type Store struct {
	URL            string
	Name           string
	ConsumerKey    string
	ConsumerSecret string
	Currency       string

	// ShipmentMethod is the store's preferred courier. Orders that request a
	// different courier fall back to it when no rate matches.
	ShipmentMethod  string
	ShipFromCity    string
	ShipFromCountry string

	// Billing is used to infer the tax country when the order carries no
	// billing address of its own.
	Billing valueobject.Address

	InternalData InternalData
	Active       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOmsCustomer reports whether an OMS customer record exists for the store.
func (s *Store) HasOmsCustomer() bool {
	return s.InternalData.OmsID != ""
}

// TaxCountry returns the country the store is taxed in, or "" when the
// billing address is missing or malformed.
func (s *Store) TaxCountry() string {
	if !s.Billing.HasCountry() {
		return ""
	}
	return s.Billing.CountryCode()
}

// Repository is the store directory contract used by the order pipeline.
type Repository interface {
	// FindByConsumerKey resolves the caller's store from its credential.
	FindByConsumerKey(ctx context.Context, consumerKey string) (*Store, error)
	// Get fetches a store by URL.
	Get(ctx context.Context, url string) (*Store, error)
	// SaveOmsID persists a newly provisioned OMS customer id.
	SaveOmsID(ctx context.Context, url, omsID string) error
	// TouchLastOrderDate records the CRM "last order" timestamp.
	TouchLastOrderDate(ctx context.Context, url string, at time.Time) error
}
