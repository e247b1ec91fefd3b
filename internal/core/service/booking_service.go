package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/metrics"
	"github.com/rl1809/rental-booking/internal/port"
)

type BookingRequest struct {
	ItemID     string
	CustomerID string
	Window     domain.TimeWindow
	Quantity   int
	CouponCode string
}

// BookingService places bookings. Each placement is one unit of work on the
// item: stock is re-checked against live data, priced and written together.
type BookingService struct {
	store   port.BookingStore
	catalog *CatalogService
	quotes  *QuoteService
	retry   RetryPolicy
	now     func() time.Time
}

func NewBookingService(store port.BookingStore, catalog *CatalogService, quotes *QuoteService, retry RetryPolicy) *BookingService {
	return &BookingService{
		store:   store,
		catalog: catalog,
		quotes:  quotes,
		retry:   retry,
		now:     time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (*domain.Booking, error) {
	booking, err := s.createBooking(ctx, req)
	metrics.BookingOutcomes.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.catalog.Invalidate(ctx, booking.ItemID)
	log.WithFields(log.Fields{
		"booking_id":  booking.ID,
		"item_id":     booking.ItemID,
		"customer_id": booking.CustomerID,
		"quantity":    booking.Quantity,
		"total":       booking.Price.Total.String(),
	}).Info("booking created")
	return booking, nil
}

func (s *BookingService) createBooking(ctx context.Context, req BookingRequest) (*domain.Booking, error) {
	now := s.now().UTC()
	if req.ItemID == "" {
		return nil, domain.Validation("itemId is required")
	}
	if req.CustomerID == "" {
		return nil, domain.Validation("customerId is required")
	}
	if err := domain.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := req.Window.ValidateFuture(now); err != nil {
		return nil, err
	}

	pctx, err := s.quotes.pricingContext(ctx, QuoteRequest{
		ItemID:     req.ItemID,
		CustomerID: req.CustomerID,
		Window:     req.Window,
		Quantity:   req.Quantity,
		CouponCode: req.CouponCode,
	}, now)
	if err != nil {
		return nil, err
	}

	var created domain.Booking
	err = withRetry(ctx, s.retry, "create_booking", func() error {
		return s.store.WithinTx(ctx, req.ItemID, func(tx port.StoreTx) error {
			item, err := tx.LockItem(ctx, req.ItemID)
			if err != nil {
				return err
			}
			if !item.Bookable() {
				return domain.ErrItemNotFound
			}

			overlap, err := tx.OverlapQuantity(ctx, item.ID, req.Window)
			if err != nil {
				return err
			}
			if a := domain.NewAvailability(item.TotalStock, overlap, req.Quantity); !a.Available {
				return a.Conflict(req.Quantity)
			}

			price, err := s.quotes.engine.Calculate(*item, req.Window, req.Quantity, pctx)
			if err != nil {
				return err
			}

			booking := domain.Booking{
				ID:            uuid.New().String(),
				OrderID:       uuid.New().String(),
				ItemID:        item.ID,
				CustomerID:    req.CustomerID,
				Quantity:      req.Quantity,
				StartTime:     req.Window.Start,
				EndTime:       req.Window.End,
				Status:        domain.StatusPending,
				PaymentStatus: domain.PaymentUnpaid,
				Price:         price,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.InsertOrder(ctx, domain.NewOrder(booking.OrderID, booking.CustomerID, now, booking)); err != nil {
				return err
			}
			if err := tx.InsertBooking(ctx, booking); err != nil {
				return err
			}

			event, err := domain.NewBookingEvent(domain.EventBookingCreated, booking, "", now)
			if err != nil {
				return err
			}
			if err := tx.AppendEvent(ctx, event); err != nil {
				return err
			}

			if err := syncAdvisory(ctx, tx, item, -booking.Quantity, now); err != nil {
				return err
			}
			created = booking
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

func (s *BookingService) ListItemBookings(ctx context.Context, itemID string) ([]domain.Booking, error) {
	if _, err := s.catalog.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.ListBookingsByItem(ctx, itemID)
}

func outcome(err error) string {
	if err == nil {
		return "created"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return string(domain.KindOf(err))
}
