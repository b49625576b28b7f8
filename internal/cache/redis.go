package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/volare/booking/config"
	"github.com/volare/booking/internal/domain"
)

// RedisCache keeps short-lived read-side copies of availability and
// direct-search results. Booking mutations invalidate the availability
// entry for the touched flight; search entries only ever age out.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (c *RedisCache) GetAvailability(ctx context.Context, flightID int64) (*domain.Availability, error) {
	data, err := c.client.Get(ctx, availabilityKey(flightID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var av domain.Availability
	if err := json.Unmarshal(data, &av); err != nil {
		return nil, err
	}
	return &av, nil
}

func (c *RedisCache) SetAvailability(ctx context.Context, av *domain.Availability) error {
	payload, err := json.Marshal(av)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, availabilityKey(av.FlightID), payload, c.ttl).Err()
}

func (c *RedisCache) InvalidateFlight(ctx context.Context, flightID int64) error {
	return c.client.Del(ctx, availabilityKey(flightID)).Err()
}

func (c *RedisCache) GetDirectSearch(ctx context.Context, key string) ([]domain.DirectOption, error) {
	data, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var options []domain.DirectOption
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *RedisCache) SetDirectSearch(ctx context.Context, key string, options []domain.DirectOption) error {
	payload, err := json.Marshal(options)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(key), payload, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func availabilityKey(flightID int64) string {
	return fmt.Sprintf("cache:availability:%d", flightID)
}

func searchKey(key string) string {
	return "cache:search:direct:" + key
}
