package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
	"github.com/rl1809/rental-booking/internal/resilience"
)

const (
	itemKeyPrefix         = "item:"
	availabilityKeyPrefix = "avail:"
	rateLimitKeyPrefix    = "ratelimit:"
	idempotencyKeyTTL     = 24 * time.Hour
)

// fixedWindowScript counts a hit and starts the window expiry on the first one.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = redis.call('INCR', key)
if current == 1 then
	redis.call('PEXPIRE', key, window)
end

if current > limit then
	return 0
end

return 1
`)

type RedisOptions struct {
	ItemTTL         time.Duration
	AvailabilityTTL time.Duration
}

type RedisAdapter struct {
	client          *redis.Client
	breaker         *resilience.CircuitBreaker
	itemTTL         time.Duration
	availabilityTTL time.Duration
}

var _ port.CacheRepository = (*RedisAdapter)(nil)

func NewRedisAdapter(client *redis.Client, opts RedisOptions) *RedisAdapter {
	if opts.ItemTTL <= 0 {
		opts.ItemTTL = 30 * time.Second
	}
	if opts.AvailabilityTTL <= 0 {
		opts.AvailabilityTTL = 5 * time.Second
	}

	settings := resilience.DefaultBreakerSettings()
	settings.Ignore = func(err error) bool { return errors.Is(err, redis.Nil) }

	return &RedisAdapter{
		client:          client,
		breaker:         resilience.NewCircuitBreaker("redis", settings),
		itemTTL:         opts.ItemTTL,
		availabilityTTL: opts.AvailabilityTTL,
	}
}

func (r *RedisAdapter) do(fn func() (interface{}, error)) (interface{}, error) {
	return r.breaker.Execute(fn)
}

func (r *RedisAdapter) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	res, err := r.do(func() (interface{}, error) {
		return r.client.Get(ctx, itemKeyPrefix+itemID).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get item: %w", err)
	}

	var item domain.Item
	if err := json.Unmarshal(res.([]byte), &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &item, nil
}

func (r *RedisAdapter) SetItem(ctx context.Context, item domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = r.do(func() (interface{}, error) {
		return nil, r.client.Set(ctx, itemKeyPrefix+item.ID, data, jittered(r.itemTTL)).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set item: %w", err)
	}
	return nil
}

func (r *RedisAdapter) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.do(func() (interface{}, error) {
		return nil, r.client.Del(ctx, itemKeyPrefix+itemID).Err()
	})
	if err != nil {
		return fmt.Errorf("redis delete item: %w", err)
	}
	return nil
}

// Availability previews for an item live in one hash so a commit can drop them all at once.
func (r *RedisAdapter) GetAvailability(ctx context.Context, itemID string, window domain.TimeWindow) (*domain.Availability, error) {
	res, err := r.do(func() (interface{}, error) {
		return r.client.HGet(ctx, availabilityKeyPrefix+itemID, windowField(window)).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get availability: %w", err)
	}

	var a domain.Availability
	if err := json.Unmarshal(res.([]byte), &a); err != nil {
		return nil, fmt.Errorf("unmarshal availability: %w", err)
	}
	return &a, nil
}

func (r *RedisAdapter) SetAvailability(ctx context.Context, itemID string, window domain.TimeWindow, a domain.Availability) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}

	key := availabilityKeyPrefix + itemID
	_, err = r.do(func() (interface{}, error) {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, windowField(window), data)
			pipe.PExpire(ctx, key, r.availabilityTTL)
			return nil
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("redis set availability: %w", err)
	}
	return nil
}

func (r *RedisAdapter) InvalidateAvailability(ctx context.Context, itemID string) error {
	_, err := r.do(func() (interface{}, error) {
		return nil, r.client.Del(ctx, availabilityKeyPrefix+itemID).Err()
	})
	if err != nil {
		return fmt.Errorf("redis invalidate availability: %w", err)
	}
	return nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	res, err := r.do(func() (interface{}, error) {
		return r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	})
	if err != nil {
		return false, err
	}

	return res.(bool), nil
}

func (r *RedisAdapter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	res, err := r.do(func() (interface{}, error) {
		return fixedWindowScript.Run(ctx, r.client, []string{rateLimitKeyPrefix + key}, limit, window.Milliseconds()).Int()
	})
	if err != nil {
		return false, err
	}

	return res.(int) == 1, nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func windowField(w domain.TimeWindow) string {
	return fmt.Sprintf("%d:%d", w.Start.UnixMilli(), w.End.UnixMilli())
}

// jittered spreads expiries over an extra fifth of the base TTL.
func jittered(ttl time.Duration) time.Duration {
	spread := int64(ttl / 5)
	if spread <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(spread))
}
