package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
)

// CatalogService owns items and coupons. Item reads go through the cache.
type CatalogService struct {
	store port.BookingStore
	cache port.CacheRepository
	sfg   singleflight.Group // Prevents cache stampede
	now   func() time.Time
}

func NewCatalogService(store port.BookingStore, cache port.CacheRepository) *CatalogService {
	return &CatalogService{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// GetItem returns the item, disabled or not.
func (s *CatalogService) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	if itemID == "" {
		return nil, domain.Validation("itemId is required")
	}

	v, err, _ := s.sfg.Do(itemID, func() (interface{}, error) {
		item, err := s.cache.GetItem(ctx, itemID)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, port.ErrCacheMiss) {
			log.WithField("item_id", itemID).WithError(err).Warn("item cache read failed")
		}

		item, err = s.store.GetItem(ctx, itemID)
		if err != nil {
			return nil, err
		}

		if err := s.cache.SetItem(ctx, *item); err != nil {
			log.WithField("item_id", itemID).WithError(err).Warn("item cache write failed")
		}
		return item, nil
	})
	if err != nil {
		return nil, err
	}

	item := *v.(*domain.Item)
	return &item, nil
}

// GetBookableItem is GetItem with disabled items reported as not found.
func (s *CatalogService) GetBookableItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Bookable() {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *CatalogService) RegisterItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.AvailableQuantity = item.TotalStock
	item.Version = 0
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"item_id": item.ID,
		"stock":   item.TotalStock,
	}).Info("item registered")
	return &item, nil
}

func (s *CatalogService) RegisterCoupon(ctx context.Context, coupon domain.Coupon) error {
	if err := coupon.Validate(); err != nil {
		return err
	}
	return s.store.CreateCoupon(ctx, coupon)
}

// Invalidate drops everything cached about an item after a committed change.
func (s *CatalogService) Invalidate(ctx context.Context, itemID string) {
	if err := s.cache.DeleteItem(ctx, itemID); err != nil {
		log.WithField("item_id", itemID).WithError(err).Warn("item cache invalidation failed")
	}
	if err := s.cache.InvalidateAvailability(ctx, itemID); err != nil {
		log.WithField("item_id", itemID).WithError(err).Warn("availability cache invalidation failed")
	}
}
