package service

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/core/pricing"
	"github.com/rl1809/rental-booking/internal/port"
)

// popularityWindow is how far back bookings count toward an item's popularity.
const popularityWindow = 7 * 24 * time.Hour

type QuoteRequest struct {
	ItemID     string
	CustomerID string // optional, enables first-time and loyalty discounts
	Window     domain.TimeWindow
	Quantity   int
	CouponCode string
}

type QuoteService struct {
	store   port.BookingStore
	catalog *CatalogService
	engine  *pricing.Engine
	now     func() time.Time
}

func NewQuoteService(store port.BookingStore, catalog *CatalogService, engine *pricing.Engine) *QuoteService {
	return &QuoteService{
		store:   store,
		catalog: catalog,
		engine:  engine,
		now:     time.Now,
	}
}

func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (domain.PriceBreakdown, error) {
	now := s.now()
	if err := domain.ValidateQuantity(req.Quantity); err != nil {
		return domain.PriceBreakdown{}, err
	}
	if err := req.Window.ValidateFuture(now); err != nil {
		return domain.PriceBreakdown{}, err
	}

	item, err := s.catalog.GetBookableItem(ctx, req.ItemID)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}

	pctx, err := s.pricingContext(ctx, req, now)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	return s.engine.Calculate(*item, req.Window, req.Quantity, pctx)
}

// pricingContext gathers the customer, coupon and popularity inputs for a quote.
func (s *QuoteService) pricingContext(ctx context.Context, req QuoteRequest, now time.Time) (pricing.Context, error) {
	pctx := pricing.Context{Now: now}

	if req.CustomerID != "" {
		stats, err := s.store.GetCustomerStats(ctx, req.CustomerID)
		if err != nil {
			return pctx, err
		}
		pctx.FirstTimeCustomer = stats.FirstTime()
		pctx.CompletedBookings = stats.CompletedBookings
	}

	recent, err := s.store.CountRecentBookings(ctx, req.ItemID, now.Add(-popularityWindow))
	if err != nil {
		return pctx, err
	}
	pctx.RecentBookings = recent

	if req.CouponCode != "" {
		coupon, err := s.store.GetCoupon(ctx, req.CouponCode)
		if errors.Is(err, domain.ErrNotFound) {
			return pctx, domain.Validation("unknown coupon %q", req.CouponCode)
		}
		if err != nil {
			return pctx, err
		}
		if !coupon.Usable(now) {
			return pctx, domain.Validation("coupon %q is expired or inactive", req.CouponCode)
		}
		pctx.Coupon = coupon
	}

	return pctx, nil
}
