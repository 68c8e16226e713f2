package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

// GormInvoiceTaskRepository stores deferred invoice tasks. One row exists per
// order; re-enqueueing an already scheduled order is a no-op.
type GormInvoiceTaskRepository struct {
	db *gorm.DB
}

// NewGormInvoiceTaskRepository creates a new GormInvoiceTaskRepository
func NewGormInvoiceTaskRepository(db *gorm.DB) *GormInvoiceTaskRepository {
	return &GormInvoiceTaskRepository{db: db}
}

// Enqueue schedules invoice creation for an order after the given delay.
func (r *GormInvoiceTaskRepository) Enqueue(ctx context.Context, storeURL, orderID string, delay time.Duration) error {
	task := models.NewInvoiceTask(storeURL, orderID, delay)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(task).Error
}

// ClaimDue atomically moves up to limit due pending tasks to PROCESSING and
// returns the claimed rows. A task claimed here is invisible to concurrent
// workers until its status is written back.
func (r *GormInvoiceTaskRepository) ClaimDue(ctx context.Context, limit int) ([]models.InvoiceTaskModel, error) {
	now := time.Now().UTC()

	var candidates []models.InvoiceTaskModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND run_after <= ?", models.InvoiceTaskPending, now).
		Order("run_after ASC").
		Limit(limit).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	claimed := make([]models.InvoiceTaskModel, 0, len(candidates))
	for i := range candidates {
		result := r.db.WithContext(ctx).
			Model(&models.InvoiceTaskModel{}).
			Where("id = ? AND status = ?", candidates[i].ID, models.InvoiceTaskPending).
			UpdateColumns(map[string]any{
				"status":     models.InvoiceTaskProcessing,
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			continue // another worker got there first
		}
		candidates[i].Status = models.InvoiceTaskProcessing
		claimed = append(claimed, candidates[i])
	}
	return claimed, nil
}

// Update writes a task's status back after processing.
func (r *GormInvoiceTaskRepository) Update(ctx context.Context, task *models.InvoiceTaskModel) error {
	return r.db.WithContext(ctx).Save(task).Error
}
