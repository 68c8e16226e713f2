package subscription

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProcessingType selects how the per-order processing fee is computed.
type ProcessingType string

const (
	ProcessingFlat       ProcessingType = "$"
	ProcessingPercentage ProcessingType = "%"
)

// Subscription is a store's marketplace membership. The order pipeline only
// reads the processing-fee attributes.
type Subscription struct {
	StoreURL            string
	Membership          string
	OrderProcessingType ProcessingType
	OrderProcessingFees decimal.Decimal
	StartDate           time.Time
	ExpireDate          time.Time
}

// Active reports whether the subscription covers now.
func (s *Subscription) Active(now time.Time) bool {
	return !now.Before(s.StartDate) && now.Before(s.ExpireDate)
}

// Adjustment computes the processing fee for an order total.
func (s *Subscription) Adjustment(total decimal.Decimal) decimal.Decimal {
	if s.OrderProcessingFees.IsZero() {
		return decimal.Zero
	}
	switch s.OrderProcessingType {
	case ProcessingPercentage:
		return total.Mul(s.OrderProcessingFees).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return s.OrderProcessingFees.Round(2)
	}
}

// Repository is the subscription lookup contract.
type Repository interface {
	// GetActiveByStore returns the store's active subscription, or nil when
	// the store has none (free tier).
	GetActiveByStore(ctx context.Context, storeURL string) (*Subscription, error)
}
