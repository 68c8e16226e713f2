package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/subscription"
)

// SubscriptionModel is the persistence model for store memberships.
type SubscriptionModel struct {
	ID                  string          `gorm:"primaryKey;size:36"`
	StoreURL            string          `gorm:"size:255;index;not null"`
	Membership          string          `gorm:"size:64;not null"`
	OrderProcessingType string          `gorm:"size:1"`
	OrderProcessingFees decimal.Decimal `gorm:"type:numeric(12,2)"`
	StartDate           time.Time       `gorm:"not null"`
	ExpireDate          time.Time       `gorm:"not null;index"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *subscription.Subscription {
	return &subscription.Subscription{
		StoreURL:            m.StoreURL,
		Membership:          m.Membership,
		OrderProcessingType: subscription.ProcessingType(m.OrderProcessingType),
		OrderProcessingFees: m.OrderProcessingFees,
		StartDate:           m.StartDate,
		ExpireDate:          m.ExpireDate,
	}
}
