package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/knawat/mp-backend/internal/application/orders"
	"github.com/knawat/mp-backend/internal/domain/oms"
	"github.com/knawat/mp-backend/internal/domain/order"
)

// RedisOrderCache is the shared read-through cache in front of the OMS. It is
// suitable for distributed deployments where multiple instances serve the
// same stores; invalidation is per store so any write drops every cached
// order and listing for that tenant.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderCache creates a cache with an existing Redis client.
func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisOrderCache{client: client, ttl: ttl}
}

func orderKey(storeURL, orderID string) string {
	return fmt.Sprintf("orders:%s:id:%s", storeURL, orderID)
}

func listKey(storeURL string, q oms.ListQuery) string {
	return fmt.Sprintf("orders:%s:list:%s:%s:%d:%d:%s:%s",
		storeURL, q.Status, q.ExternalID, q.Page, q.PerPage, q.Sort, q.SortDirection)
}

// GetOrder returns the cached order, or (nil, nil) on a miss.
func (c *RedisOrderCache) GetOrder(ctx context.Context, storeURL, orderID string) (*order.Order, error) {
	raw, err := c.client.Get(ctx, orderKey(storeURL, orderID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("order cache get: %w", err)
	}

	var ord order.Order
	if err := json.Unmarshal(raw, &ord); err != nil {
		return nil, fmt.Errorf("order cache decode: %w", err)
	}
	return &ord, nil
}

// SetOrder stores an order snapshot.
func (c *RedisOrderCache) SetOrder(ctx context.Context, storeURL string, o *order.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("order cache encode: %w", err)
	}
	return c.client.Set(ctx, orderKey(storeURL, o.ID), raw, c.ttl).Err()
}

// GetList returns the cached listing for the query, or (nil, nil) on a miss.
func (c *RedisOrderCache) GetList(ctx context.Context, storeURL string, q oms.ListQuery) ([]order.Order, error) {
	raw, err := c.client.Get(ctx, listKey(storeURL, q)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("order list cache get: %w", err)
	}

	var list []order.Order
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("order list cache decode: %w", err)
	}
	return list, nil
}

// SetList stores a listing snapshot under its query key.
func (c *RedisOrderCache) SetList(ctx context.Context, storeURL string, q oms.ListQuery, list []order.Order) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("order list cache encode: %w", err)
	}
	return c.client.Set(ctx, listKey(storeURL, q), raw, c.ttl).Err()
}

// Invalidate drops every cached order and listing for the store. Keys are
// walked with SCAN so large tenants never block the server the way KEYS
// would.
func (c *RedisOrderCache) Invalidate(ctx context.Context, storeURL string) error {
	pattern := fmt.Sprintf("orders:%s:*", storeURL)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("order cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("order cache del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the underlying Redis client.
func (c *RedisOrderCache) Close() error {
	return c.client.Close()
}

// Ensure RedisOrderCache implements orders.OrderCache
var _ orders.OrderCache = (*RedisOrderCache)(nil)
