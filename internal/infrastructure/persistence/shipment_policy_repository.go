package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/shipment"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormShipmentPolicyRepository implements shipment.Repository using GORM
type GormShipmentPolicyRepository struct {
	db *gorm.DB
}

// NewGormShipmentPolicyRepository creates a new GormShipmentPolicyRepository
func NewGormShipmentPolicyRepository(db *gorm.DB) *GormShipmentPolicyRepository {
	return &GormShipmentPolicyRepository{db: db}
}

// FindByCountry returns every policy shipping to the destination. The policy
// table holds a handful of logistics partners, so the country membership test
// runs in memory over the JSON column.
func (r *GormShipmentPolicyRepository) FindByCountry(ctx context.Context, country string) ([]shipment.Policy, error) {
	var rows []models.ShipmentPolicyModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	var policies []shipment.Policy
	for i := range rows {
		policy := rows[i].ToDomain()
		if policy.ShipsTo(country) {
			policies = append(policies, policy)
		}
	}
	return policies, nil
}

// Ensure GormShipmentPolicyRepository implements shipment.Repository
var _ shipment.Repository = (*GormShipmentPolicyRepository)(nil)
