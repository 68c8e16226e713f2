package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/coupon"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormCouponRepository implements coupon.Repository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Get fetches a coupon by code.
func (r *GormCouponRepository) Get(ctx context.Context, code string) (*coupon.Coupon, error) {
	var model models.CouponModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, coupon.ErrCouponNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// IncrementUse bumps the redemption counter. The guarded UPDATE keeps the
// counter from passing max_uses under concurrent redemptions.
func (r *GormCouponRepository) IncrementUse(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&models.CouponModel{}).
		Where("code = ? AND (max_uses = 0 OR use_count < max_uses)", code).
		UpdateColumn("use_count", gorm.Expr("use_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return coupon.ErrCouponNotFound
	}
	return nil
}

// FindAutoForMembership returns the automatic coupons open to the given
// membership tier. Membership eligibility lives in a JSON column, so the
// auto rows are filtered in memory.
func (r *GormCouponRepository) FindAutoForMembership(ctx context.Context, membership string) ([]coupon.Coupon, error) {
	var rows []models.CouponModel
	if err := r.db.WithContext(ctx).
		Where("auto = ?", true).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	var coupons []coupon.Coupon
	for i := range rows {
		c := rows[i].ToDomain()
		if c.AppliesTo(membership) {
			coupons = append(coupons, *c)
		}
	}
	return coupons, nil
}

// Ensure GormCouponRepository implements coupon.Repository
var _ coupon.Repository = (*GormCouponRepository)(nil)
