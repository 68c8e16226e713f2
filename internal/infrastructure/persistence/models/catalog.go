package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog products.
type ProductModel struct {
	SKU        string `gorm:"primaryKey;size:64"`
	Name       string `gorm:"size:255"`
	Archived   bool   `gorm:"default:false;index"`
	SalesQty   int    `gorm:"default:0"`
	Variations []VariationModel `gorm:"foreignKey:ProductSKU;references:SKU"`
	CreatedAt  time.Time        `gorm:"not null"`
	UpdatedAt  time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// VariationModel is the persistence model for sellable product variations.
type VariationModel struct {
	SKU           string          `gorm:"primaryKey;size:64"`
	ProductSKU    string          `gorm:"size:64;index;not null"`
	Quantity      int             `gorm:"default:0"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(12,2)"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2)"`
	Weight        decimal.Decimal `gorm:"type:numeric(8,3)"`
}

// TableName returns the table name for GORM
func (VariationModel) TableName() string {
	return "product_variations"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() catalog.Product {
	variations := make([]catalog.Variation, len(m.Variations))
	for i, v := range m.Variations {
		variations[i] = catalog.Variation{
			SKU:           v.SKU,
			Quantity:      v.Quantity,
			SalePrice:     v.SalePrice,
			PurchasePrice: v.PurchasePrice,
			Weight:        v.Weight,
		}
	}
	return catalog.Product{
		SKU:        m.SKU,
		Name:       m.Name,
		Archived:   m.Archived,
		SalesQty:   m.SalesQty,
		Variations: variations,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.SKU = p.SKU
	m.Name = p.Name
	m.Archived = p.Archived
	m.SalesQty = p.SalesQty
	m.Variations = make([]VariationModel, len(p.Variations))
	for i, v := range p.Variations {
		m.Variations[i] = VariationModel{
			SKU:           v.SKU,
			ProductSKU:    p.SKU,
			Quantity:      v.Quantity,
			SalePrice:     v.SalePrice,
			PurchasePrice: v.PurchasePrice,
			Weight:        v.Weight,
		}
	}
}
