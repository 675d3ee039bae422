package dailyclose

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statusCacheKey = "dailyclose:status"

// StatusCache keeps the close status in Redis for a short window so the
// front end can poll it cheaply. A nil cache is a no-op.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache instantiates the cache helper.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

// Fetch loads the cached status or populates it using the loader.
func (c *StatusCache) Fetch(ctx context.Context, loader func(context.Context) (CloseStatus, error)) (CloseStatus, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, statusCacheKey).Bytes()
	if err == nil {
		var status CloseStatus
		if err := json.Unmarshal(payload, &status); err == nil {
			return status, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return CloseStatus{}, err
	}
	status, err := loader(ctx)
	if err != nil {
		return CloseStatus{}, err
	}
	if raw, err := json.Marshal(status); err == nil {
		_ = c.client.Set(ctx, statusCacheKey, raw, c.ttl).Err()
	}
	return status, nil
}

// Invalidate drops the cached status after a close or reopen.
func (c *StatusCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, statusCacheKey).Err()
}
