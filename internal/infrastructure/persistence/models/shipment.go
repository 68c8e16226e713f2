package models

import (
	"encoding/json"
	"time"

	"github.com/knawat/mp-backend/internal/domain/shipment"
)

// ShipmentPolicyModel is the persistence model for shipping rate policies.
// Countries, rules and origins are stored as JSON documents; the policy table
// is small and filtered in memory by the rate engine.
type ShipmentPolicyModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Name          string    `gorm:"size:128;uniqueIndex;not null"`
	CountriesJSON string    `gorm:"type:jsonb;column:countries"`
	RulesJSON     string    `gorm:"type:jsonb;column:rules"`
	ShipFromJSON  string    `gorm:"type:jsonb;column:ship_from"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentPolicyModel) TableName() string {
	return "shipment_policies"
}

// ToDomain converts the persistence model to a domain Policy
func (m *ShipmentPolicyModel) ToDomain() shipment.Policy {
	p := shipment.Policy{Name: m.Name}
	if m.CountriesJSON != "" {
		_ = json.Unmarshal([]byte(m.CountriesJSON), &p.Countries)
	}
	if m.RulesJSON != "" {
		_ = json.Unmarshal([]byte(m.RulesJSON), &p.Rules)
	}
	if m.ShipFromJSON != "" {
		_ = json.Unmarshal([]byte(m.ShipFromJSON), &p.ShipFrom)
	}
	return p
}

// FromDomain populates the persistence model from a domain Policy
func (m *ShipmentPolicyModel) FromDomain(p *shipment.Policy) {
	m.Name = p.Name
	if encoded, err := json.Marshal(p.Countries); err == nil {
		m.CountriesJSON = string(encoded)
	}
	if encoded, err := json.Marshal(p.Rules); err == nil {
		m.RulesJSON = string(encoded)
	}
	if encoded, err := json.Marshal(p.ShipFrom); err == nil {
		m.ShipFromJSON = string(encoded)
	}
}
