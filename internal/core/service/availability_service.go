package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
)

// AvailabilityService answers preview stock queries. Answers may be served from
// a short-lived cache; booking commits never consult it.
type AvailabilityService struct {
	store   port.BookingStore
	cache   port.CacheRepository
	catalog *CatalogService
	now     func() time.Time
}

func NewAvailabilityService(store port.BookingStore, cache port.CacheRepository, catalog *CatalogService) *AvailabilityService {
	return &AvailabilityService{
		store:   store,
		cache:   cache,
		catalog: catalog,
		now:     time.Now,
	}
}

func (s *AvailabilityService) CheckAvailability(ctx context.Context, itemID string, window domain.TimeWindow, quantity int) (domain.Availability, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.Availability{}, err
	}
	if err := window.ValidateFuture(s.now()); err != nil {
		return domain.Availability{}, err
	}

	item, err := s.catalog.GetBookableItem(ctx, itemID)
	if err != nil {
		return domain.Availability{}, err
	}

	cached, err := s.cache.GetAvailability(ctx, itemID, window)
	if err == nil {
		return cached.ForQuantity(quantity), nil
	}
	if !errors.Is(err, port.ErrCacheMiss) {
		log.WithField("item_id", itemID).WithError(err).Warn("availability cache read failed")
	}

	overlap, err := s.store.OverlapQuantity(ctx, itemID, window)
	if err != nil {
		return domain.Availability{}, err
	}

	a := domain.NewAvailability(item.TotalStock, overlap, quantity)
	if err := s.cache.SetAvailability(ctx, itemID, window, a); err != nil {
		log.WithField("item_id", itemID).WithError(err).Warn("availability cache write failed")
	}
	return a, nil
}
