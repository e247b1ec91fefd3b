package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/rental-booking/internal/adapter/storage"
	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/core/pricing"
	"github.com/rl1809/rental-booking/internal/port"
)

var testNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	now   time.Time
	store *storage.MemoryAdapter
	cache port.CacheRepository

	catalog      *CatalogService
	availability *AvailabilityService
	quotes       *QuoteService
	bookings     *BookingService
	lifecycle    *LifecycleService
}

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newFixture(t *testing.T, variant domain.PricingVariant) *fixture {
	return newFixtureWithCache(t, variant, storage.NopCache{})
}

func newFixtureWithCache(t *testing.T, variant domain.PricingVariant, cache port.CacheRepository) *fixture {
	t.Helper()

	cfg := pricing.DefaultConfig()
	cfg.Variant = variant
	engine := pricing.NewEngine(cfg)

	f := &fixture{now: testNow, store: storage.NewMemoryAdapter(), cache: cache}
	clock := func() time.Time { return f.now }

	f.catalog = NewCatalogService(f.store, cache)
	f.catalog.now = clock
	f.availability = NewAvailabilityService(f.store, cache, f.catalog)
	f.availability.now = clock
	f.quotes = NewQuoteService(f.store, f.catalog, engine)
	f.quotes.now = clock
	f.bookings = NewBookingService(f.store, f.catalog, f.quotes, testRetryPolicy())
	f.bookings.now = clock
	f.lifecycle = NewLifecycleService(f.store, cache, f.catalog, testRetryPolicy())
	f.lifecycle.now = clock
	return f
}

// addItem registers an item with an hourly rate of 50, a daily rate of 300,
// a flat deposit of 20 and a 10% late fee.
func (f *fixture) addItem(t *testing.T, stock int) *domain.Item {
	t.Helper()

	item, err := f.catalog.RegisterItem(context.Background(), domain.Item{
		Name:       "Camera",
		OwnerID:    "owner-1",
		TotalStock: stock,
		PricingTiers: []domain.PricingTier{
			{Unit: domain.UnitHour, Rate: decimal.NewFromInt(50)},
			{Unit: domain.UnitDay, Rate: decimal.NewFromInt(300)},
		},
		Deposit:        domain.DepositRule{Type: domain.DepositFlat, Value: decimal.NewFromInt(20)},
		LateFeePercent: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) book(ctx context.Context, itemID, customerID string, qty int, start, end time.Time) (*domain.Booking, error) {
	return f.bookings.CreateBooking(ctx, BookingRequest{
		ItemID:     itemID,
		CustomerID: customerID,
		Window:     domain.NewTimeWindow(start, end),
		Quantity:   qty,
	})
}

func at(hour, minute int) time.Time {
	return time.Date(2030, 1, 1, hour, minute, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
