package coupon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/shared"
)

// DiscountType selects how the coupon discount is computed.
type DiscountType string

const (
	DiscountFlat       DiscountType = "$"
	DiscountPercentage DiscountType = "%"
)

// Coupon is a redeemable discount code. Expiry and exhaustion are checked at
// redemption time, not at creation time.
type Coupon struct {
	Code               string
	Discount           decimal.Decimal
	DiscountType       DiscountType
	StartDate          time.Time
	EndDate            time.Time
	MaxUses            int
	UseCount           int
	AppliedMemberships []string
	Auto               bool
}

// Active reports whether the redemption window covers now.
func (c *Coupon) Active(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// Exhausted reports whether the coupon has reached its usage cap.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses > 0 && c.UseCount >= c.MaxUses
}

// AppliesTo reports whether the membership tier may redeem the coupon. An
// empty membership list means any tier.
func (c *Coupon) AppliesTo(membership string) bool {
	if len(c.AppliedMemberships) == 0 {
		return true
	}
	for _, m := range c.AppliedMemberships {
		if m == membership {
			return true
		}
	}
	return false
}

// Amount computes the discount value against the given base total.
func (c *Coupon) Amount(base decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case DiscountPercentage:
		return base.Mul(c.Discount).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return c.Discount.Round(2)
	}
}

// ErrCouponNotFound is returned by Repository.Get for unknown codes.
var ErrCouponNotFound = shared.NewDomainError("COUPON_NOT_FOUND", "Coupon not found")

// Repository is the coupon table contract. IncrementUse is called by the
// order pipeline exactly once per successful order creation; the discount
// engine itself never mutates usage counters.
type Repository interface {
	Get(ctx context.Context, code string) (*Coupon, error)
	// IncrementUse bumps useCount, refusing to exceed maxUses.
	IncrementUse(ctx context.Context, code string) error
	// FindAutoForMembership lists automatic (codeless) discounts the
	// membership tier is eligible for.
	FindAutoForMembership(ctx context.Context, membership string) ([]Coupon, error)
}
