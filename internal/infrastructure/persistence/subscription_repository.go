package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/subscription"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormSubscriptionRepository implements subscription.Repository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// GetActiveByStore returns the store's subscription covering the current
// date, or nil when the store is on the free tier.
func (r *GormSubscriptionRepository) GetActiveByStore(ctx context.Context, storeURL string) (*subscription.Subscription, error) {
	now := time.Now().UTC()

	var model models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("store_url = ? AND start_date <= ? AND expire_date > ?", storeURL, now, now).
		Order("expire_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSubscriptionRepository implements subscription.Repository
var _ subscription.Repository = (*GormSubscriptionRepository)(nil)
