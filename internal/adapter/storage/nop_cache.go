package storage

import (
	"context"
	"time"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
)

// NopCache is used when no Redis is configured. Every read misses and every
// rate-limit check passes; idempotency falls back to persisted booking state.
type NopCache struct{}

var _ port.CacheRepository = NopCache{}

func (NopCache) GetItem(context.Context, string) (*domain.Item, error) { return nil, port.ErrCacheMiss }
func (NopCache) SetItem(context.Context, domain.Item) error { return nil }
func (NopCache) DeleteItem(context.Context, string) error { return nil }

func (NopCache) GetAvailability(context.Context, string, domain.TimeWindow) (*domain.Availability, error) {
	return nil, port.ErrCacheMiss
}

func (NopCache) SetAvailability(context.Context, string, domain.TimeWindow, domain.Availability) error {
	return nil
}

func (NopCache) InvalidateAvailability(context.Context, string) error { return nil }
func (NopCache) SetIdempotency(context.Context, string) (bool, error) { return true, nil }
func (NopCache) Allow(context.Context, string, int, time.Duration) (bool, error) { return true, nil }
func (NopCache) Ping(context.Context) error { return nil }
