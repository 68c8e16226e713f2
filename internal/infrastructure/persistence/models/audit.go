package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/knawat/mp-backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for append-only audit entries. The
// day column is the partition/pruning key.
type AuditLogModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Topic    string    `gorm:"size:64;index:idx_audit_topic,priority:1;not null"`
	TopicID  string    `gorm:"size:128;index:idx_audit_topic,priority:2"`
	Message  string    `gorm:"type:text"`
	StoreID  string    `gorm:"size:255;index"`
	Level    string    `gorm:"size:8;index"`
	Code     int       `gorm:"default:0"`
	Payload  string    `gorm:"type:jsonb"`
	Day      string    `gorm:"size:10;index;not null"`
	LoggedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain Entry
func (m *AuditLogModel) ToDomain() audit.Entry {
	var payload json.RawMessage
	if m.Payload != "" {
		payload = json.RawMessage(m.Payload)
	}
	return audit.Entry{
		ID:       m.ID,
		Topic:    m.Topic,
		TopicID:  m.TopicID,
		Message:  m.Message,
		StoreID:  m.StoreID,
		Level:    audit.Level(m.Level),
		Code:     m.Code,
		Payload:  payload,
		Day:      m.Day,
		LoggedAt: m.LoggedAt,
	}
}

// FromDomain populates the persistence model from a domain Entry
func (m *AuditLogModel) FromDomain(e *audit.Entry) {
	m.ID = e.ID
	m.Topic = e.Topic
	m.TopicID = e.TopicID
	m.Message = e.Message
	m.StoreID = e.StoreID
	m.Level = string(e.Level)
	m.Code = e.Code
	m.Payload = string(e.Payload)
	m.Day = e.Day
	m.LoggedAt = e.LoggedAt
}
