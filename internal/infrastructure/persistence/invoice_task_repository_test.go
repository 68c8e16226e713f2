package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

func setupInvoiceTaskTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InvoiceTaskModel{}))

	return db
}

func TestGormInvoiceTaskRepository_Enqueue(t *testing.T) {
	db := setupInvoiceTaskTestDB(t)
	repo := NewGormInvoiceTaskRepository(db)

	t.Run("second enqueue for the same order is a no-op", func(t *testing.T) {
		require.NoError(t, repo.Enqueue(context.Background(), "https://shop.example.com", "order-1", 0))
		require.NoError(t, repo.Enqueue(context.Background(), "https://shop.example.com", "order-1", time.Hour))

		var count int64
		require.NoError(t, db.Model(&models.InvoiceTaskModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var task models.InvoiceTaskModel
		require.NoError(t, db.First(&task, "order_id = ?", "order-1").Error)
		assert.Equal(t, models.InvoiceTaskPending, task.Status)
		assert.WithinDuration(t, time.Now().UTC(), task.RunAfter, time.Minute)
	})
}

func TestGormInvoiceTaskRepository_ClaimDue(t *testing.T) {
	db := setupInvoiceTaskTestDB(t)
	repo := NewGormInvoiceTaskRepository(db)

	require.NoError(t, repo.Enqueue(context.Background(), "https://shop.example.com", "due-order", 0))
	require.NoError(t, repo.Enqueue(context.Background(), "https://shop.example.com", "future-order", time.Hour))

	t.Run("claims only due pending tasks", func(t *testing.T) {
		claimed, err := repo.ClaimDue(context.Background(), 10)

		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, "due-order", claimed[0].OrderID)
		assert.Equal(t, models.InvoiceTaskProcessing, claimed[0].Status)
	})

	t.Run("claimed tasks are invisible to a second claim", func(t *testing.T) {
		claimed, err := repo.ClaimDue(context.Background(), 10)

		require.NoError(t, err)
		assert.Empty(t, claimed)
	})
}

func TestGormInvoiceTaskRepository_Update(t *testing.T) {
	db := setupInvoiceTaskTestDB(t)
	repo := NewGormInvoiceTaskRepository(db)

	require.NoError(t, repo.Enqueue(context.Background(), "https://shop.example.com", "order-x", 0))
	claimed, err := repo.ClaimDue(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	t.Run("failed task goes dead after max attempts", func(t *testing.T) {
		task := claimed[0]
		task.MarkFailed("oms unreachable", 1)
		require.NoError(t, repo.Update(context.Background(), &task))

		var stored models.InvoiceTaskModel
		require.NoError(t, db.First(&stored, "order_id = ?", "order-x").Error)
		assert.Equal(t, models.InvoiceTaskDead, stored.Status)
		assert.Equal(t, 1, stored.Attempts)
		assert.Equal(t, "oms unreachable", stored.LastError)
	})
}
