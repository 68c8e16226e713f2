package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/domain/store"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByConsumerKey resolves a store from its API credential.
func (r *GormStoreRepository) FindByConsumerKey(ctx context.Context, consumerKey string) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).
		Where("consumer_key = ?", consumerKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Get fetches a store by URL.
func (r *GormStoreRepository) Get(ctx context.Context, url string) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "url = ?", url).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveOmsID persists a newly provisioned OMS customer id.
func (r *GormStoreRepository) SaveOmsID(ctx context.Context, url, omsID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Where("url = ?", url).
		Update("oms_id", omsID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TouchLastOrderDate records the CRM "last order" timestamp.
func (r *GormStoreRepository) TouchLastOrderDate(ctx context.Context, url string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Where("url = ?", url).
		Update("last_order_date", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates a store.
func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	var model models.StoreModel
	model.FromDomain(s)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	model.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(&model).Error
}

// Ensure GormStoreRepository implements store.Repository
var _ store.Repository = (*GormStoreRepository)(nil)
