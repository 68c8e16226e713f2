package models

import (
	"encoding/json"
	"time"

	"github.com/knawat/mp-backend/internal/domain/shared/valueobject"
	"github.com/knawat/mp-backend/internal/domain/store"
)

// StoreModel is the persistence model for tenant storefronts. The store URL
// is the natural key used across all services.
type StoreModel struct {
	URL             string `gorm:"primaryKey;size:255"`
	Name            string `gorm:"size:255"`
	ConsumerKey     string `gorm:"size:64;uniqueIndex;not null"`
	ConsumerSecret  string `gorm:"size:64;not null"`
	Currency        string `gorm:"size:3"`
	ShipmentMethod  string `gorm:"size:64"`
	ShipFromCity    string `gorm:"size:128"`
	ShipFromCountry string `gorm:"size:2"`
	BillingJSON     string `gorm:"type:jsonb;column:billing"`
	OmsID           string `gorm:"size:64;index"`
	LastOrderDate   *time.Time
	Active          bool      `gorm:"default:true"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() *store.Store {
	var billing valueobject.Address
	if m.BillingJSON != "" {
		// Malformed JSON degrades to an empty address; the tax resolver
		// treats that as a missing store address.
		_ = json.Unmarshal([]byte(m.BillingJSON), &billing)
	}
	return &store.Store{
		URL:             m.URL,
		Name:            m.Name,
		ConsumerKey:     m.ConsumerKey,
		ConsumerSecret:  m.ConsumerSecret,
		Currency:        m.Currency,
		ShipmentMethod:  m.ShipmentMethod,
		ShipFromCity:    m.ShipFromCity,
		ShipFromCountry: m.ShipFromCountry,
		Billing:         billing,
		InternalData: store.InternalData{
			OmsID:         m.OmsID,
			LastOrderDate: m.LastOrderDate,
		},
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Store
func (m *StoreModel) FromDomain(s *store.Store) {
	m.URL = s.URL
	m.Name = s.Name
	m.ConsumerKey = s.ConsumerKey
	m.ConsumerSecret = s.ConsumerSecret
	m.Currency = s.Currency
	m.ShipmentMethod = s.ShipmentMethod
	m.ShipFromCity = s.ShipFromCity
	m.ShipFromCountry = s.ShipFromCountry
	if !s.Billing.IsZero() {
		if encoded, err := json.Marshal(s.Billing); err == nil {
			m.BillingJSON = string(encoded)
		}
	}
	m.OmsID = s.InternalData.OmsID
	m.LastOrderDate = s.InternalData.LastOrderDate
	m.Active = s.Active
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}
