package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/core/pricing"
	"github.com/rl1809/rental-booking/internal/metrics"
	"github.com/rl1809/rental-booking/internal/port"
)

// LifecycleService moves bookings through their states. Every change runs in
// the unit of work of the booking's item and resyncs the advisory counter.
type LifecycleService struct {
	store   port.BookingStore
	cache   port.CacheRepository
	catalog *CatalogService
	retry   RetryPolicy
	now     func() time.Time
}

func NewLifecycleService(store port.BookingStore, cache port.CacheRepository, catalog *CatalogService, retry RetryPolicy) *LifecycleService {
	return &LifecycleService{
		store:   store,
		cache:   cache,
		catalog: catalog,
		retry:   retry,
		now:     time.Now,
	}
}

// mutation edits the locked booking in place. It returns the event to record,
// or an empty type when nothing changed.
type mutation func(item *domain.Item, b *domain.Booking) (domain.EventType, error)

func (s *LifecycleService) change(ctx context.Context, bookingID, op string, mutate mutation) (*domain.Booking, bool, error) {
	current, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}
	itemID := current.ItemID

	var (
		result  domain.Booking
		changed bool
	)
	err = withRetry(ctx, s.retry, op, func() error {
		return s.store.WithinTx(ctx, itemID, func(tx port.StoreTx) error {
			now := s.now().UTC()
			item, err := tx.LockItem(ctx, itemID)
			if err != nil {
				return err
			}
			b, err := tx.GetBooking(ctx, bookingID)
			if err != nil {
				return err
			}

			previous := b.Status
			previousPayment := b.PaymentStatus
			held := b.Status.HoldsStock()

			eventType, err := mutate(item, b)
			if err != nil {
				return err
			}
			result, changed = *b, eventType != ""
			if !changed {
				return nil
			}

			// A booking that released its units cannot take them back unless
			// they are still free for what is left of its window.
			if !held && b.Status.HoldsStock() {
				if err := checkRetake(ctx, tx, item, b, now); err != nil {
					return err
				}
			}

			if err := tx.UpdateBooking(ctx, *b); err != nil {
				return err
			}
			if b.PaymentStatus != previousPayment {
				if err := tx.UpdateOrderPayment(ctx, b.OrderID, b.PaymentStatus, now); err != nil {
					return err
				}
			}

			event, err := domain.NewBookingEvent(eventType, *b, previous, now)
			if err != nil {
				return err
			}
			if err := tx.AppendEvent(ctx, event); err != nil {
				return err
			}

			delta := 0
			if held && !b.Status.HoldsStock() && b.EndTime.After(now) {
				delta = b.Quantity
			}
			if err := syncAdvisory(ctx, tx, item, delta, now); err != nil {
				return err
			}

			if previous != b.Status {
				metrics.LifecycleTransitions.WithLabelValues(string(previous), string(b.Status)).Inc()
			}
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		s.catalog.Invalidate(ctx, itemID)
	}
	return &result, changed, nil
}

// checkRetake runs before the booking row is rewritten, so the overlap sum
// does not yet include b.
func checkRetake(ctx context.Context, tx port.StoreTx, item *domain.Item, b *domain.Booking, now time.Time) error {
	start := b.StartTime
	if now.After(start) {
		start = now
	}
	if !b.EndTime.After(start) {
		return nil
	}

	overlap, err := tx.OverlapQuantity(ctx, item.ID, domain.NewTimeWindow(start, b.EndTime))
	if err != nil {
		return err
	}
	if a := domain.NewAvailability(item.TotalStock, overlap, b.Quantity); !a.Available {
		return a.Conflict(b.Quantity)
	}
	return nil
}

// Transition applies an explicit status change. at defaults to now and is the
// time recorded for the change, used as the return time for late fees.
func (s *LifecycleService) Transition(ctx context.Context, bookingID string, to domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	b, _, err := s.change(ctx, bookingID, "transition", func(item *domain.Item, b *domain.Booking) (domain.EventType, error) {
		if err := domain.ValidateTransition(b.Status, to); err != nil {
			return "", err
		}
		if last := b.LastStamp(); !at.IsZero() && at.Before(last) {
			return "", domain.Validation("transition time %s is before the booking's last change at %s",
				at.UTC().Format(time.RFC3339), last.Format(time.RFC3339))
		}
		return s.apply(item, b, to, s.at(at)), nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"booking_id": b.ID,
		"status":     b.Status,
	}).Info("booking status changed")
	return b, nil
}

// apply performs a validated transition with its side effects on fees and refunds.
func (s *LifecycleService) apply(item *domain.Item, b *domain.Booking, to domain.BookingStatus, at time.Time) domain.EventType {
	switch to {
	case domain.StatusReturned, domain.StatusCompleted:
		if b.ReturnedAt == nil {
			b.LateFee = pricing.LateFee(*item, *b, at)
		}
	case domain.StatusCancelled:
		b.RefundAmount = pricing.Refund(*b, at)
		if b.PaymentStatus == domain.PaymentPaid {
			b.PaymentStatus = domain.PaymentRefunded
		}
	}
	b.Apply(to, at)

	switch to {
	case domain.StatusCancelled:
		return domain.EventBookingCancel
	case domain.StatusExpired:
		return domain.EventBookingExpired
	default:
		return domain.EventBookingStatus
	}
}

// Cancel cancels a booking and computes its refund. A non-empty customerID
// restricts the cancellation to that customer's own bookings. Cancelling an
// already cancelled booking returns ErrAlreadyCancelled.
func (s *LifecycleService) Cancel(ctx context.Context, bookingID, customerID string) (*domain.Booking, error) {
	b, _, err := s.change(ctx, bookingID, "cancel", func(item *domain.Item, b *domain.Booking) (domain.EventType, error) {
		if customerID != "" && b.CustomerID != customerID {
			return "", &domain.Error{Kind: domain.KindForbidden, Message: "booking belongs to another customer"}
		}
		if err := domain.ValidateTransition(b.Status, domain.StatusCancelled); err != nil {
			return "", err
		}
		return s.apply(item, b, domain.StatusCancelled, s.now().UTC()), nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"booking_id": b.ID,
		"refund":     b.RefundAmount.String(),
	}).Info("booking cancelled")
	return b, nil
}

// ApplyPaymentResult records the gateway's verdict for a pending or an unpaid
// confirmed booking. A failed payment cancels the booking.
// Repeated deliveries of the same reference are no-ops; applied reports
// whether this call changed the booking.
func (s *LifecycleService) ApplyPaymentResult(ctx context.Context, bookingID string, success bool, reference string) (*domain.Booking, bool, error) {
	if reference == "" {
		return nil, false, domain.Validation("payment reference is required")
	}

	key := fmt.Sprintf("payment:%s:%s", bookingID, reference)
	first, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		log.WithField("booking_id", bookingID).WithError(err).Warn("payment idempotency check failed, using stored state")
		first = true
	}
	if !first {
		current, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, false, err
		}
		if current.PaymentReference == reference {
			return current, false, nil
		}
		// The key outlived a delivery that never committed. Fall through.
	}

	b, applied, err := s.change(ctx, bookingID, "apply_payment", func(_ *domain.Item, b *domain.Booking) (domain.EventType, error) {
		if b.PaymentReference == reference {
			return "", nil
		}
		if b.PaymentStatus == domain.PaymentPaid || b.PaymentStatus == domain.PaymentFailed {
			return "", &domain.Error{Kind: domain.KindConflict, Message: "payment already recorded under another reference"}
		}
		if b.Status != domain.StatusPending && b.Status != domain.StatusConfirmed {
			return "", &domain.Error{Kind: domain.KindConflict, Message: fmt.Sprintf("booking is %s, not awaiting payment", b.Status)}
		}

		at := s.now().UTC()
		b.PaymentReference = reference
		if success {
			// A booking confirmed ahead of payment keeps its status.
			b.PaymentStatus = domain.PaymentPaid
			b.Apply(domain.StatusConfirmed, at)
		} else {
			b.PaymentStatus = domain.PaymentFailed
			b.RefundAmount = decimal.Zero
			b.Apply(domain.StatusCancelled, at)
		}
		return domain.EventBookingPayment, nil
	})
	if err != nil {
		return nil, false, err
	}

	log.WithFields(log.Fields{
		"booking_id": b.ID,
		"success":    success,
		"reference":  reference,
		"status":     b.Status,
		"applied":    applied,
	}).Info("payment result received")
	return b, applied, nil
}

// ExpirePending moves bookings left pending since before cutoff to expired.
// It returns how many were expired.
func (s *LifecycleService) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.store.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range stale {
		_, changed, err := s.change(ctx, candidate.ID, "expire", func(item *domain.Item, b *domain.Booking) (domain.EventType, error) {
			if b.Status != domain.StatusPending {
				return "", nil
			}
			return s.apply(item, b, domain.StatusExpired, s.now().UTC()), nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return expired, err
			}
			log.WithField("booking_id", candidate.ID).WithError(err).Error("failed to expire pending booking")
			continue
		}
		if changed {
			expired++
			metrics.ExpiredBookings.Inc()
		}
	}
	return expired, nil
}

// ReconcileAdvisory recomputes an item's advisory counter outside of any booking change.
func (s *LifecycleService) ReconcileAdvisory(ctx context.Context, itemID string) error {
	return withRetry(ctx, s.retry, "reconcile_advisory", func() error {
		return s.store.WithinTx(ctx, itemID, func(tx port.StoreTx) error {
			item, err := tx.LockItem(ctx, itemID)
			if err != nil {
				return err
			}
			return syncAdvisory(ctx, tx, item, 0, s.now().UTC())
		})
	})
}

// ReconcileEnded resyncs the advisory counter of every item with a booking
// that ended in (after, until]. It returns how many items were reconciled.
func (s *LifecycleService) ReconcileEnded(ctx context.Context, after, until time.Time) (int, error) {
	itemIDs, err := s.store.ListItemsWithEndedBookings(ctx, after, until)
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for _, itemID := range itemIDs {
		if err := s.ReconcileAdvisory(ctx, itemID); err != nil {
			if errors.Is(err, context.Canceled) {
				return reconciled, err
			}
			log.WithField("item_id", itemID).WithError(err).Error("failed to reconcile advisory counter")
			continue
		}
		reconciled++
		s.catalog.Invalidate(ctx, itemID)
	}
	return reconciled, nil
}

func (s *LifecycleService) at(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t.UTC()
}
