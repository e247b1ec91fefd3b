package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
)

// MemoryAdapter is a process-local BookingStore. Units of work on the same
// item are serialized by a per-item mutex; their writes are staged and applied
// together on success.
type MemoryAdapter struct {
	mu       sync.RWMutex
	items    map[string]domain.Item
	bookings map[string]domain.Booking
	orders   map[string]domain.Order
	coupons  map[string]domain.Coupon
	events   []domain.OutboxEvent

	itemLocks sync.Map
}

var _ port.BookingStore = (*MemoryAdapter)(nil)

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		items:    make(map[string]domain.Item),
		bookings: make(map[string]domain.Booking),
		orders:   make(map[string]domain.Order),
		coupons:  make(map[string]domain.Coupon),
	}
}

func (m *MemoryAdapter) itemLock(itemID string) *sync.Mutex {
	l, _ := m.itemLocks.LoadOrStore(itemID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (m *MemoryAdapter) WithinTx(ctx context.Context, itemID string, fn func(tx port.StoreTx) error) error {
	lock := m.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{
		m:        m,
		items:    make(map[string]domain.Item),
		bookings: make(map[string]domain.Booking),
		orders:   make(map[string]domain.Order),
	}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range tx.items {
		m.items[id] = item
	}
	for id, b := range tx.bookings {
		m.bookings[id] = b
	}
	for id, o := range tx.orders {
		m.orders[id] = o
	}
	m.events = append(m.events, tx.events...)
	return nil
}

func (m *MemoryAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; ok {
		return &domain.Error{Kind: domain.KindConflict, Message: "item " + item.ID + " already exists"}
	}
	m.items[item.ID] = item
	return nil
}

func (m *MemoryAdapter) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (m *MemoryAdapter) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (m *MemoryAdapter) ListBookingsByItem(ctx context.Context, itemID string) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ItemID == itemID {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (m *MemoryAdapter) OverlapQuantity(ctx context.Context, itemID string, window domain.TimeWindow) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := 0
	for _, b := range m.bookings {
		if b.ItemID == itemID && b.Status.HoldsStock() && b.Window().Overlaps(window) {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (m *MemoryAdapter) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Booking
	for _, b := range m.bookings {
		if b.Status == domain.StatusPending && b.CreatedAt.Before(createdBefore) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryAdapter) ListItemsWithEndedBookings(ctx context.Context, after, until time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, b := range m.bookings {
		if !b.Status.HoldsStock() || seen[b.ItemID] {
			continue
		}
		if b.EndTime.After(after) && !b.EndTime.After(until) {
			seen[b.ItemID] = true
			out = append(out, b.ItemID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryAdapter) CountRecentBookings(ctx context.Context, itemID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, b := range m.bookings {
		if b.ItemID == itemID && !b.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryAdapter) GetCustomerStats(ctx context.Context, customerID string) (domain.CustomerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := domain.CustomerStats{CustomerID: customerID}
	for _, b := range m.bookings {
		if b.CustomerID != customerID || b.Status == domain.StatusCancelled || b.Status == domain.StatusExpired {
			continue
		}
		stats.TotalBookings++
		if b.Status == domain.StatusCompleted {
			stats.CompletedBookings++
		}
	}
	return stats, nil
}

func (m *MemoryAdapter) CreateCoupon(ctx context.Context, coupon domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[coupon.Code] = coupon
	return nil
}

func (m *MemoryAdapter) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.coupons[code]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return &c, nil
}

func (m *MemoryAdapter) FetchUnpublishedEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryAdapter) MarkEventPublished(ctx context.Context, eventID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.events {
		if m.events[i].ID == eventID {
			published := at
			m.events[i].PublishedAt = &published
			return nil
		}
	}
	return domain.NotFound("outbox event not found")
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return ctx.Err()
}

// GetOrder is used by tests and the stress tool to inspect committed orders.
func (m *MemoryAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	return &o, nil
}

type memoryTx struct {
	m        *MemoryAdapter
	items    map[string]domain.Item
	bookings map[string]domain.Booking
	orders   map[string]domain.Order
	events   []domain.OutboxEvent
}

func (tx *memoryTx) item(itemID string) (domain.Item, bool) {
	if item, ok := tx.items[itemID]; ok {
		return item, true
	}
	tx.m.mu.RLock()
	defer tx.m.mu.RUnlock()
	item, ok := tx.m.items[itemID]
	return item, ok
}

// itemBookings merges committed bookings for the item with staged writes.
func (tx *memoryTx) itemBookings(itemID string) []domain.Booking {
	tx.m.mu.RLock()
	var out []domain.Booking
	for id, b := range tx.m.bookings {
		if b.ItemID != itemID {
			continue
		}
		if _, staged := tx.bookings[id]; staged {
			continue
		}
		out = append(out, b)
	}
	tx.m.mu.RUnlock()

	for _, b := range tx.bookings {
		if b.ItemID == itemID {
			out = append(out, b)
		}
	}
	return out
}

func (tx *memoryTx) LockItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, ok := tx.item(itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (tx *memoryTx) OverlapQuantity(ctx context.Context, itemID string, window domain.TimeWindow) (int, error) {
	sum := 0
	for _, b := range tx.itemBookings(itemID) {
		if b.Status.HoldsStock() && b.Window().Overlaps(window) {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (tx *memoryTx) OutstandingQuantity(ctx context.Context, itemID string, now time.Time) (int, error) {
	sum := 0
	for _, b := range tx.itemBookings(itemID) {
		if b.Outstanding(now) {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (tx *memoryTx) UpdateAdvisory(ctx context.Context, itemID string, available, version int) error {
	item, ok := tx.item(itemID)
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Version != version {
		return ErrOptimisticLock
	}
	item.AvailableQuantity = available
	item.Version++
	item.UpdatedAt = time.Now().UTC()
	tx.items[itemID] = item
	return nil
}

func (tx *memoryTx) InsertOrder(ctx context.Context, order domain.Order) error {
	tx.orders[order.ID] = order
	return nil
}

func (tx *memoryTx) UpdateOrderPayment(ctx context.Context, orderID string, status domain.PaymentStatus, at time.Time) error {
	order, ok := tx.orders[orderID]
	if !ok {
		tx.m.mu.RLock()
		order, ok = tx.m.orders[orderID]
		tx.m.mu.RUnlock()
	}
	if !ok {
		return domain.NotFound("order not found")
	}
	order.PaymentStatus = status
	order.UpdatedAt = at
	tx.orders[orderID] = order
	return nil
}

func (tx *memoryTx) InsertBooking(ctx context.Context, booking domain.Booking) error {
	tx.bookings[booking.ID] = booking
	return nil
}

func (tx *memoryTx) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if b, ok := tx.bookings[bookingID]; ok {
		return &b, nil
	}
	return tx.m.GetBooking(ctx, bookingID)
}

func (tx *memoryTx) UpdateBooking(ctx context.Context, booking domain.Booking) error {
	if _, err := tx.GetBooking(ctx, booking.ID); err != nil {
		return err
	}
	tx.bookings[booking.ID] = booking
	return nil
}

func (tx *memoryTx) AppendEvent(ctx context.Context, event domain.OutboxEvent) error {
	tx.events = append(tx.events, event)
	return nil
}

func sortBookings(bookings []domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].StartTime.Equal(bookings[j].StartTime) {
			return bookings[i].StartTime.Before(bookings[j].StartTime)
		}
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})
}
