package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw availability bodies per venue and date.
type Cache interface {
	Get(ctx context.Context, venueID string, date time.Time) ([]byte, bool, error)
	Set(ctx context.Context, venueID string, date time.Time, body []byte) error
	Delete(ctx context.Context, venueID string, date time.Time) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(venueID string, date time.Time) string {
	return fmt.Sprintf("availability:%s:%s", venueID, date.Format(DateLayout))
}

func (c *redisCache) Get(ctx context.Context, venueID string, date time.Time) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(venueID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached availability failed: %w", err)
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, venueID string, date time.Time, body []byte) error {
	if err := c.client.Set(ctx, cacheKey(venueID, date), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache availability failed: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, venueID string, date time.Time) error {
	if err := c.client.Del(ctx, cacheKey(venueID, date)).Err(); err != nil {
		return fmt.Errorf("invalidate availability failed: %w", err)
	}
	return nil
}
