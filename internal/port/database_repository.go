package port

//go:generate mockgen -source=database_repository.go -destination=mocks/database_repository.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

// ErrWriteConflict marks transient contention (deadlock, lock wait timeout,
// stale advisory version). The unit of work may be retried.
var ErrWriteConflict = errors.New("write conflict")

type BookingStore interface {
	// WithinTx runs fn as one atomic unit serialized against every other unit
	// for the same item. Nothing fn wrote survives if it returns an error.
	WithinTx(ctx context.Context, itemID string, fn func(tx StoreTx) error) error

	CreateItem(ctx context.Context, item domain.Item) error
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListBookingsByItem(ctx context.Context, itemID string) ([]domain.Booking, error)

	// OverlapQuantity sums stock-holding bookings overlapping the window, outside
	// any unit of work. Preview use only.
	OverlapQuantity(ctx context.Context, itemID string, window domain.TimeWindow) (int, error)

	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error)

	// ListItemsWithEndedBookings returns the distinct items owning a stock-holding
	// booking whose end falls in (after, until].
	ListItemsWithEndedBookings(ctx context.Context, after, until time.Time) ([]string, error)
	CountRecentBookings(ctx context.Context, itemID string, since time.Time) (int, error)
	GetCustomerStats(ctx context.Context, customerID string) (domain.CustomerStats, error)

	CreateCoupon(ctx context.Context, coupon domain.Coupon) error
	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)

	FetchUnpublishedEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, eventID string, at time.Time) error

	Ping(ctx context.Context) error
}

// StoreTx is the view of the store inside one unit of work.
type StoreTx interface {
	// LockItem loads the item and holds it for the rest of the unit.
	LockItem(ctx context.Context, itemID string) (*domain.Item, error)

	OverlapQuantity(ctx context.Context, itemID string, window domain.TimeWindow) (int, error)

	// OutstandingQuantity sums stock-holding bookings that have not ended by now,
	// including writes made earlier in this unit.
	OutstandingQuantity(ctx context.Context, itemID string, now time.Time) (int, error)

	// UpdateAdvisory writes the item's advisory counter if its version still
	// matches, returning ErrWriteConflict otherwise.
	UpdateAdvisory(ctx context.Context, itemID string, available, version int) error

	InsertOrder(ctx context.Context, order domain.Order) error
	UpdateOrderPayment(ctx context.Context, orderID string, status domain.PaymentStatus, at time.Time) error

	InsertBooking(ctx context.Context, booking domain.Booking) error
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, booking domain.Booking) error

	AppendEvent(ctx context.Context, event domain.OutboxEvent) error
}
