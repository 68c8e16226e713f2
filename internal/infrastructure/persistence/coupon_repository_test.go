package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/coupon"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

func setupCouponTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CouponModel{}))

	return db
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, maxUses int, auto bool, memberships string) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.CouponModel{
		Code:                   code,
		Discount:               decimal.NewFromInt(10),
		DiscountType:           "%",
		StartDate:              now.Add(-time.Hour),
		EndDate:                now.Add(time.Hour),
		MaxUses:                maxUses,
		AppliedMembershipsJSON: memberships,
		Auto:                   auto,
		CreatedAt:              now,
		UpdatedAt:              now,
	}).Error)
}

func TestGormCouponRepository_Get(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewGormCouponRepository(db)
	seedCoupon(t, db, "WELCOME10", 5, false, `["gold","free"]`)

	t.Run("returns stored coupon", func(t *testing.T) {
		c, err := repo.Get(context.Background(), "WELCOME10")

		require.NoError(t, err)
		assert.Equal(t, "WELCOME10", c.Code)
		assert.Equal(t, coupon.DiscountPercentage, c.DiscountType)
		assert.Equal(t, []string{"gold", "free"}, c.AppliedMemberships)
	})

	t.Run("maps unknown code to domain error", func(t *testing.T) {
		_, err := repo.Get(context.Background(), "NOPE")

		assert.ErrorIs(t, err, coupon.ErrCouponNotFound)
	})
}

func TestGormCouponRepository_IncrementUse(t *testing.T) {
	t.Run("never passes the usage cap", func(t *testing.T) {
		db := setupCouponTestDB(t)
		repo := NewGormCouponRepository(db)
		seedCoupon(t, db, "CAPPED", 2, false, "")

		require.NoError(t, repo.IncrementUse(context.Background(), "CAPPED"))
		require.NoError(t, repo.IncrementUse(context.Background(), "CAPPED"))
		assert.Error(t, repo.IncrementUse(context.Background(), "CAPPED"))

		var model models.CouponModel
		require.NoError(t, db.First(&model, "code = ?", "CAPPED").Error)
		assert.Equal(t, 2, model.UseCount)
	})

	t.Run("zero max_uses means unlimited", func(t *testing.T) {
		db := setupCouponTestDB(t)
		repo := NewGormCouponRepository(db)
		seedCoupon(t, db, "FOREVER", 0, false, "")

		for i := 0; i < 5; i++ {
			require.NoError(t, repo.IncrementUse(context.Background(), "FOREVER"))
		}

		var model models.CouponModel
		require.NoError(t, db.First(&model, "code = ?", "FOREVER").Error)
		assert.Equal(t, 5, model.UseCount)
	})
}

func TestGormCouponRepository_FindAutoForMembership(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewGormCouponRepository(db)
	seedCoupon(t, db, "AUTO-GOLD", 0, true, `["gold"]`)
	seedCoupon(t, db, "AUTO-ANY", 0, true, "")
	seedCoupon(t, db, "MANUAL", 0, false, "")

	t.Run("filters by membership eligibility", func(t *testing.T) {
		coupons, err := repo.FindAutoForMembership(context.Background(), "free")

		require.NoError(t, err)
		require.Len(t, coupons, 1)
		assert.Equal(t, "AUTO-ANY", coupons[0].Code)
	})

	t.Run("includes tier-restricted coupons for matching tier", func(t *testing.T) {
		coupons, err := repo.FindAutoForMembership(context.Background(), "gold")

		require.NoError(t, err)
		assert.Len(t, coupons, 2)
	})
}
