package port

//go:generate mockgen -source=cache_repository.go -destination=mocks/cache_repository.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CacheRepository holds ephemeral, expiring state. Nothing in it gates a booking commit.
type CacheRepository interface {
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
	SetItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, itemID string) error

	// GetAvailability returns a cached preview for the window, ErrCacheMiss if absent.
	GetAvailability(ctx context.Context, itemID string, window domain.TimeWindow) (*domain.Availability, error)
	SetAvailability(ctx context.Context, itemID string, window domain.TimeWindow, a domain.Availability) error
	InvalidateAvailability(ctx context.Context, itemID string) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// Allow counts a hit against key in a fixed window and reports whether it is within limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}
