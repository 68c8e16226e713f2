package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/coupon"
)

// CouponModel is the persistence model for redeemable discount codes.
type CouponModel struct {
	Code                   string          `gorm:"primaryKey;size:64"`
	Discount               decimal.Decimal `gorm:"type:numeric(12,2)"`
	DiscountType           string          `gorm:"size:1;not null"`
	StartDate              time.Time       `gorm:"not null"`
	EndDate                time.Time       `gorm:"not null"`
	MaxUses                int             `gorm:"default:0"`
	UseCount               int             `gorm:"default:0"`
	AppliedMembershipsJSON string          `gorm:"type:jsonb;column:applied_memberships"`
	Auto                   bool            `gorm:"default:false;index"`
	CreatedAt              time.Time       `gorm:"not null"`
	UpdatedAt              time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CouponModel) TableName() string {
	return "coupons"
}

// ToDomain converts the persistence model to a domain Coupon
func (m *CouponModel) ToDomain() *coupon.Coupon {
	var memberships []string
	if m.AppliedMembershipsJSON != "" {
		_ = json.Unmarshal([]byte(m.AppliedMembershipsJSON), &memberships)
	}
	return &coupon.Coupon{
		Code:               m.Code,
		Discount:           m.Discount,
		DiscountType:       coupon.DiscountType(m.DiscountType),
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		MaxUses:            m.MaxUses,
		UseCount:           m.UseCount,
		AppliedMemberships: memberships,
		Auto:               m.Auto,
	}
}

// FromDomain populates the persistence model from a domain Coupon
func (m *CouponModel) FromDomain(c *coupon.Coupon) {
	m.Code = c.Code
	m.Discount = c.Discount
	m.DiscountType = string(c.DiscountType)
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.MaxUses = c.MaxUses
	m.UseCount = c.UseCount
	if encoded, err := json.Marshal(c.AppliedMemberships); err == nil {
		m.AppliedMembershipsJSON = string(encoded)
	}
	m.Auto = c.Auto
}
