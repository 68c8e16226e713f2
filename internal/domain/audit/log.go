package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/knawat/mp-backend/internal/domain/shared"
)

// Level is the severity of an audit entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// IsValid reports whether the level is known.
func (l Level) IsValid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// Entry is one append-only audit record. Entries are bucketed by day so the
// backing table can be partitioned and pruned by date.
type Entry struct {
	ID       uuid.UUID
	Topic    string
	TopicID  string
	Message  string
	StoreID  string
	Level    Level
	Code     int
	Payload  json.RawMessage
	Day      string // YYYY-MM-DD partition key
	LoggedAt time.Time
}

// NewEntry builds an entry stamped with the current day bucket.
func NewEntry(topic, topicID, message, storeID string, level Level, code int, payload json.RawMessage) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ID:       uuid.New(),
		Topic:    topic,
		TopicID:  topicID,
		Message:  message,
		StoreID:  storeID,
		Level:    level,
		Code:     code,
		Payload:  payload,
		Day:      now.Format("2006-01-02"),
		LoggedAt: now,
	}
}

// Query filters audit entries for support triage.
type Query struct {
	Topic   string
	TopicID string
	StoreID string
	Level   Level
	shared.Filter
}

// Repository is the append-only audit store contract.
type Repository interface {
	Add(ctx context.Context, entry *Entry) error
	Find(ctx context.Context, q Query) ([]Entry, int64, error)
}
