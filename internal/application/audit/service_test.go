package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/audit"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Add(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Find(ctx context.Context, q audit.Query) ([]audit.Entry, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]audit.Entry), args.Get(1).(int64), args.Error(2)
}

func TestService_Log(t *testing.T) {
	ctx := context.Background()

	t.Run("appends entry with serialized payload", func(t *testing.T) {
		repo := new(MockAuditRepository)
		var captured *audit.Entry
		repo.On("Add", ctx, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*audit.Entry)
		}).Return(nil)

		svc := NewService(repo, zap.NewNop())
		svc.Log(ctx, "order", "ext-1", "Order Received", "https://shop.example.com", audit.LevelInfo, 0, map[string]string{"sku": "ABC123"})

		repo.AssertExpectations(t)
		assert.Equal(t, "order", captured.Topic)
		assert.Equal(t, "ext-1", captured.TopicID)
		assert.JSONEq(t, `{"sku":"ABC123"}`, string(captured.Payload))
		assert.NotEmpty(t, captured.Day)
	})

	t.Run("append failure is swallowed", func(t *testing.T) {
		repo := new(MockAuditRepository)
		repo.On("Add", ctx, mock.Anything).Return(assert.AnError)

		svc := NewService(repo, zap.NewNop())
		assert.NotPanics(t, func() {
			svc.Log(ctx, "order", "ext-1", "Order Created", "", audit.LevelInfo, 0, nil)
		})
	})
}

func TestService_Find(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAuditRepository)
	repo.On("Find", ctx, mock.MatchedBy(func(q audit.Query) bool {
		return q.Page == 1 && q.PageSize == 20
	})).Return([]audit.Entry{}, int64(0), nil)

	svc := NewService(repo, zap.NewNop())
	_, _, err := svc.Find(ctx, audit.Query{Topic: "order"})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
