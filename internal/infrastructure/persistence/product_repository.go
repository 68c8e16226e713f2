package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/catalog"
	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindBySKUs returns the products owning any of the given variation SKUs.
// Archived products are treated as not carried.
func (r *GormProductRepository) FindBySKUs(ctx context.Context, skus []string) ([]catalog.Product, error) {
	if len(skus) == 0 {
		return []catalog.Product{}, nil
	}

	var variations []models.VariationModel
	if err := r.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Find(&variations).Error; err != nil {
		return nil, err
	}
	if len(variations) == 0 {
		return []catalog.Product{}, nil
	}

	productSKUs := make([]string, 0, len(variations))
	seen := make(map[string]struct{}, len(variations))
	for _, v := range variations {
		if _, ok := seen[v.ProductSKU]; ok {
			continue
		}
		seen[v.ProductSKU] = struct{}{}
		productSKUs = append(productSKUs, v.ProductSKU)
	}

	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Variations").
		Where("sku IN ? AND archived = ?", productSKUs, false).
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, nil
}

// IncrementSalesQuantity bumps the owning product's sales counter.
func (r *GormProductRepository) IncrementSalesQuantity(ctx context.Context, sku string, qty int) error {
	var variation models.VariationModel
	if err := r.db.WithContext(ctx).First(&variation, "sku = ?", sku).Error; err != nil {
		return shared.ErrNotFound
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("sku = ?", variation.ProductSKU).
		UpdateColumn("sales_qty", gorm.Expr("sales_qty + ?", qty)).Error
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
