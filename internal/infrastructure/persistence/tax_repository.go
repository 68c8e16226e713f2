package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/tax"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormTaxRepository implements tax.Repository using GORM
type GormTaxRepository struct {
	db *gorm.DB
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

// FindByCountryAndClass returns the tax row covering the (country, class)
// pair, or nil when none matches. Class membership lives in a JSON column, so
// the country's rows are filtered in memory.
func (r *GormTaxRepository) FindByCountryAndClass(ctx context.Context, country, class string) (*tax.Tax, error) {
	var rows []models.TaxModel
	if err := r.db.WithContext(ctx).
		Where("country = ?", country).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		row := rows[i].ToDomain()
		if row.AppliesTo(class) {
			return row, nil
		}
	}
	return nil, nil
}

// Ensure GormTaxRepository implements tax.Repository
var _ tax.Repository = (*GormTaxRepository)(nil)
