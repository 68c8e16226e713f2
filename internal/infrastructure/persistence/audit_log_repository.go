package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/audit"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// auditSortColumns is the allow-list of sortable columns. Anything else falls
// back to the event timestamp so user input never reaches the ORDER BY clause.
var auditSortColumns = map[string]string{
	"logged_at": "logged_at",
	"day":       "day",
	"level":     "level",
	"code":      "code",
}

// GormAuditLogRepository implements audit.Repository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Add appends an entry. Entries are never updated or deleted by the service;
// pruning happens out of band on the day partition key.
func (r *GormAuditLogRepository) Add(ctx context.Context, entry *audit.Entry) error {
	var model models.AuditLogModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Find returns the entries matching the query plus the total match count.
func (r *GormAuditLogRepository) Find(ctx context.Context, q audit.Query) ([]audit.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})

	if q.Topic != "" {
		query = query.Where("topic = ?", q.Topic)
	}
	if q.TopicID != "" {
		query = query.Where("topic_id = ?", q.TopicID)
	}
	if q.StoreID != "" {
		query = query.Where("store_id = ?", q.StoreID)
	}
	if q.Level != "" {
		query = query.Where("level = ?", string(q.Level))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := auditSortColumns[q.OrderBy]
	if !ok {
		column = "logged_at"
	}

	var rows []models.AuditLogModel
	if err := query.
		Order(fmt.Sprintf("%s %s", column, q.OrderDir)).
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]audit.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}

// Ensure GormAuditLogRepository implements audit.Repository
var _ audit.Repository = (*GormAuditLogRepository)(nil)
