package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/knawat/mp-backend/internal/domain/tax"
)

// TaxModel is the persistence model for operator-maintained tax rates.
type TaxModel struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Country     string          `gorm:"size:2;index;not null"`
	ClassesJSON string          `gorm:"type:jsonb;column:classes"`
	Percentage  decimal.Decimal `gorm:"type:numeric(5,2)"`
	IsInclusive bool            `gorm:"default:false"`
	OmsID       string          `gorm:"size:64"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxModel) TableName() string {
	return "taxes"
}

// ToDomain converts the persistence model to a domain Tax
func (m *TaxModel) ToDomain() *tax.Tax {
	var classes []string
	if m.ClassesJSON != "" {
		_ = json.Unmarshal([]byte(m.ClassesJSON), &classes)
	}
	return &tax.Tax{
		ID:          m.ID,
		Country:     m.Country,
		Classes:     classes,
		Percentage:  m.Percentage,
		IsInclusive: m.IsInclusive,
		OmsID:       m.OmsID,
	}
}

// FromDomain populates the persistence model from a domain Tax
func (m *TaxModel) FromDomain(t *tax.Tax) {
	m.ID = t.ID
	m.Country = t.Country
	if encoded, err := json.Marshal(t.Classes); err == nil {
		m.ClassesJSON = string(encoded)
	}
	m.Percentage = t.Percentage
	m.IsInclusive = t.IsInclusive
	m.OmsID = t.OmsID
}
