package persistence

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/audit"
	"github.com/knawat/mp-backend/internal/infrastructure/persistence/models"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLogModel{}))

	return db
}

func TestGormAuditLogRepository_Find(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()

	add := func(topic, topicID, storeID string, level audit.Level) {
		t.Helper()
		entry := audit.NewEntry(topic, topicID, "msg", storeID, level, 0, json.RawMessage(`{"k":"v"}`))
		require.NoError(t, repo.Add(ctx, entry))
	}

	add("order", "ord-1", "https://a.example.com", audit.LevelInfo)
	add("order", "ord-1", "https://a.example.com", audit.LevelWarn)
	add("order", "ord-2", "https://a.example.com", audit.LevelInfo)
	add("invoice", "inv-1", "https://b.example.com", audit.LevelError)

	t.Run("filters by topic and topic id", func(t *testing.T) {
		q := audit.Query{Topic: "order", TopicID: "ord-1"}
		q.Normalize()

		entries, total, err := repo.Find(ctx, q)

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, "ord-1", e.TopicID)
		}
	})

	t.Run("filters by store and level", func(t *testing.T) {
		q := audit.Query{StoreID: "https://a.example.com", Level: audit.LevelWarn}
		q.Normalize()

		entries, total, err := repo.Find(ctx, q)

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, entries, 1)
		assert.Equal(t, audit.LevelWarn, entries[0].Level)
		assert.JSONEq(t, `{"k":"v"}`, string(entries[0].Payload))
	})

	t.Run("paginates results", func(t *testing.T) {
		q := audit.Query{Topic: "order"}
		q.Normalize()
		q.PageSize = 2

		entries, total, err := repo.Find(ctx, q)

		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, entries, 2)

		q.Page = 2
		entries, _, err = repo.Find(ctx, q)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("ignores unknown sort columns", func(t *testing.T) {
		q := audit.Query{Topic: "order"}
		q.Normalize()
		q.OrderBy = "payload; DROP TABLE audit_logs"

		_, _, err := repo.Find(ctx, q)
		assert.NoError(t, err)
	})
}
