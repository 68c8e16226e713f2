package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/audit"
)

// Service writes and queries the audit log. Writes are best-effort: a failed
// append is logged and swallowed so the calling pipeline never fails on audit.
type Service struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewService creates the audit service.
func NewService(repo audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log appends an audit entry. payload, when non-nil, is JSON-encoded onto the
// entry; encoding failures drop the payload but keep the entry.
func (s *Service) Log(ctx context.Context, topic, topicID, message, storeID string, level audit.Level, code int, payload any) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn("audit payload not serializable",
				zap.String("topic", topic),
				zap.String("topicId", topicID),
				zap.Error(err))
		} else {
			raw = encoded
		}
	}

	entry := audit.NewEntry(topic, topicID, message, storeID, level, code, raw)
	if err := s.repo.Add(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.String("topic", topic),
			zap.String("topicId", topicID),
			zap.String("storeId", storeID),
			zap.Error(err))
	}
}

// Find queries the audit log for support triage.
func (s *Service) Find(ctx context.Context, q audit.Query) ([]audit.Entry, int64, error) {
	q.Normalize()
	return s.repo.Find(ctx, q)
}
