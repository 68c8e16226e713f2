package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/coupon"
	"github.com/knawat/mp-backend/internal/domain/order"
)

// Expenses are the monetary figures a discount may be computed against.
type Expenses struct {
	Total      decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	Adjustment decimal.Decimal
}

// Outcome is the engine's verdict. A rejected coupon produces a warning and a
// zero discount, never an error. Auto marks discounts the pipeline must not
// consume a usage slot for.
type Outcome struct {
	Discount decimal.Decimal
	Coupon   string
	Auto     bool
	Warnings []order.Warning
}

// Engine validates coupons and computes discount amounts. It never mutates
// usage counters; the pipeline consumes a slot after the order persists.
type Engine struct {
	coupons coupon.Repository
	now     func() time.Time
	logger  *zap.Logger
}

// NewEngine creates a discount engine.
func NewEngine(coupons coupon.Repository, logger *zap.Logger) *Engine {
	return &Engine{coupons: coupons, now: time.Now, logger: logger}
}

// Discount resolves the discount for an order. With a code, the coupon is
// validated for window, exhaustion and membership eligibility; with isAuto and
// no code, the best automatic discount for the membership is selected.
func (e *Engine) Discount(ctx context.Context, code, membership string, exp Expenses, isAuto bool) (Outcome, error) {
	if code != "" {
		return e.redeem(ctx, code, membership, exp)
	}
	if isAuto {
		return e.autoSelect(ctx, membership, exp)
	}
	return Outcome{}, nil
}

func (e *Engine) redeem(ctx context.Context, code, membership string, exp Expenses) (Outcome, error) {
	c, err := e.coupons.Get(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrCouponNotFound) {
			return rejected(fmt.Sprintf("Coupon %s is not valid", code)), nil
		}
		return Outcome{}, err
	}

	switch {
	case !c.Active(e.now()):
		return rejected(fmt.Sprintf("Coupon %s has expired", code)), nil
	case c.Exhausted():
		return rejected(fmt.Sprintf("Coupon %s has reached its usage limit", code)), nil
	case !c.AppliesTo(membership):
		return rejected(fmt.Sprintf("Coupon %s is not available for your membership", code)), nil
	}

	return Outcome{Discount: c.Amount(exp.Total), Coupon: c.Code}, nil
}

func (e *Engine) autoSelect(ctx context.Context, membership string, exp Expenses) (Outcome, error) {
	candidates, err := e.coupons.FindAutoForMembership(ctx, membership)
	if err != nil {
		return Outcome{}, err
	}

	var best *coupon.Coupon
	bestAmount := decimal.Zero
	now := e.now()
	for i := range candidates {
		c := &candidates[i]
		if !c.Active(now) || c.Exhausted() {
			continue
		}
		amount := c.Amount(exp.Total)
		if best == nil || amount.GreaterThan(bestAmount) {
			best = c
			bestAmount = amount
		}
	}
	if best == nil {
		return Outcome{}, nil
	}

	e.logger.Debug("auto discount selected",
		zap.String("coupon", best.Code),
		zap.String("membership", membership),
		zap.String("discount", bestAmount.String()))
	return Outcome{Discount: bestAmount, Coupon: best.Code, Auto: true}, nil
}

func rejected(message string) Outcome {
	return Outcome{Warnings: []order.Warning{order.NewWarning(order.CodeCouponNotApplied, message)}}
}
