package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/port"
)

var ErrOptimisticLock = fmt.Errorf("optimistic lock conflict: %w", port.ErrWriteConflict)

// MySQL server error numbers. Deadlocks and lock wait timeouts are transient.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrDuplicateEntry  = 1062
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type MySQLAdapter struct {
	db *sql.DB
}

var _ port.BookingStore = (*MySQLAdapter)(nil)

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// WithinTx runs fn in a READ COMMITTED transaction. The first statement of
// every unit is expected to be LockItem, which takes the item row lock.
func (m *MySQLAdapter) WithinTx(ctx context.Context, itemID string, fn func(tx port.StoreTx) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// classify marks deadlocks and lock wait timeouts as write conflicts.
func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlErrDeadlock || me.Number == mysqlErrLockWaitTimeout) {
		return fmt.Errorf("%w: %v", port.ErrWriteConflict, err)
	}
	return err
}

const itemColumns = `id, owner_id, name, total_stock, pricing_tiers, discounted_rate, deposit_type, deposit_value,
	min_rental_seconds, max_rental_seconds, late_fee_percent, available_quantity, version, disabled,
	created_at, updated_at`

const bookingColumns = `id, order_id, item_id, customer_id, quantity, start_time, end_time, status,
	payment_status, payment_reference, price, late_fee, refund_amount, picked_up_at, returned_at,
	cancelled_at, created_at, updated_at`

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	tiers, err := json.Marshal(item.PricingTiers)
	if err != nil {
		return fmt.Errorf("marshal pricing tiers: %w", err)
	}

	var discounted decimal.NullDecimal
	if item.DiscountedRate != nil {
		discounted = decimal.NewNullDecimal(*item.DiscountedRate)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerID, item.Name, item.TotalStock, string(tiers), discounted,
		string(item.Deposit.Type), item.Deposit.Value,
		int64(item.MinRentalPeriod/time.Second), int64(item.MaxRentalPeriod/time.Second),
		item.LateFeePercent, item.AvailableQuantity, item.Version, item.Disabled,
		item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
		return &domain.Error{Kind: domain.KindConflict, Message: "item " + item.ID + " already exists"}
	}
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, itemID)
	return scanItem(row)
}

func (m *MySQLAdapter) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return getBooking(ctx, m.db, bookingID, false)
}

func (m *MySQLAdapter) ListBookingsByItem(ctx context.Context, itemID string) ([]domain.Booking, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE item_id = ?
		ORDER BY start_time, created_at`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return scanBookings(rows)
}

func (m *MySQLAdapter) OverlapQuantity(ctx context.Context, itemID string, window domain.TimeWindow) (int, error) {
	return overlapQuantity(ctx, m.db, itemID, window)
}

func (m *MySQLAdapter) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = ? AND created_at < ?
		ORDER BY created_at
		LIMIT ?`, string(domain.StatusPending), createdBefore.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending: %w", err)
	}
	return scanBookings(rows)
}

func (m *MySQLAdapter) ListItemsWithEndedBookings(ctx context.Context, after, until time.Time) ([]string, error) {
	in, args := holdingStatusArgs()
	args = append(args, after.UTC(), until.UTC())

	rows, err := m.db.QueryContext(ctx, `
		SELECT DISTINCT item_id FROM bookings
		WHERE status IN `+in+` AND end_time > ? AND end_time <= ?
		ORDER BY item_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query items with ended bookings: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) CountRecentBookings(ctx context.Context, itemID string, since time.Time) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings WHERE item_id = ? AND created_at >= ?`,
		itemID, since.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent bookings: %w", err)
	}
	return n, nil
}

func (m *MySQLAdapter) GetCustomerStats(ctx context.Context, customerID string) (domain.CustomerStats, error) {
	stats := domain.CustomerStats{CustomerID: customerID}
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM bookings
		WHERE customer_id = ? AND status NOT IN (?, ?)`,
		string(domain.StatusCompleted), customerID,
		string(domain.StatusCancelled), string(domain.StatusExpired),
	).Scan(&stats.TotalBookings, &stats.CompletedBookings)
	if err != nil {
		return stats, fmt.Errorf("query customer stats: %w", err)
	}
	return stats, nil
}

func (m *MySQLAdapter) CreateCoupon(ctx context.Context, c domain.Coupon) error {
	var expires sql.NullTime
	if c.ExpiresAt != nil {
		expires = sql.NullTime{Time: c.ExpiresAt.UTC(), Valid: true}
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO coupons (code, type, value, min_spend, max_discount, expires_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE type = VALUES(type), value = VALUES(value), min_spend = VALUES(min_spend),
			max_discount = VALUES(max_discount), expires_at = VALUES(expires_at), active = VALUES(active)`,
		c.Code, string(c.Type), c.Value, c.MinSpend, c.MaxDiscount, expires, c.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	var (
		c       domain.Coupon
		typ     string
		expires sql.NullTime
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT code, type, value, min_spend, max_discount, expires_at, active
		FROM coupons WHERE code = ?`, code,
	).Scan(&c.Code, &typ, &c.Value, &c.MinSpend, &c.MaxDiscount, &expires, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon: %w", err)
	}
	c.Type = domain.CouponType(typ)
	if expires.Valid {
		t := expires.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

func (m *MySQLAdapter) FetchUnpublishedEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var (
			e   domain.OutboxEvent
			typ string
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &typ, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.EventType = domain.EventType(typ)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (m *MySQLAdapter) MarkEventPublished(ctx context.Context, eventID string, at time.Time) error {
	_, err := m.db.ExecContext(ctx, `UPDATE outbox_events SET published_at = ? WHERE id = ?`, at.UTC(), eventID)
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) LockItem(ctx context.Context, itemID string) (*domain.Item, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ? FOR UPDATE`, itemID)
	return scanItem(row)
}

func (t *mysqlTx) OverlapQuantity(ctx context.Context, itemID string, window domain.TimeWindow) (int, error) {
	return overlapQuantity(ctx, t.tx, itemID, window)
}

func (t *mysqlTx) OutstandingQuantity(ctx context.Context, itemID string, now time.Time) (int, error) {
	in, args := holdingStatusArgs()
	args = append([]any{itemID}, args...)
	args = append(args, now.UTC())

	var sum int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM bookings
		WHERE item_id = ? AND status IN `+in+` AND end_time > ?`, args...,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum outstanding: %w", err)
	}
	return sum, nil
}

func (t *mysqlTx) UpdateAdvisory(ctx context.Context, itemID string, available, version int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE items
		SET available_quantity = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		available, time.Now().UTC(), itemID, version,
	)
	if err != nil {
		return fmt.Errorf("update advisory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (t *mysqlTx) InsertOrder(ctx context.Context, o domain.Order) error {
	ids, err := json.Marshal(o.BookingIDs)
	if err != nil {
		return fmt.Errorf("marshal booking ids: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, booking_ids, subtotal, total, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CustomerID, string(ids), o.Subtotal, o.Total, string(o.PaymentStatus),
		o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *mysqlTx) UpdateOrderPayment(ctx context.Context, orderID string, status domain.PaymentStatus, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?`,
		string(status), at.UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}
	return nil
}

func (t *mysqlTx) InsertBooking(ctx context.Context, b domain.Booking) error {
	price, err := json.Marshal(b.Price)
	if err != nil {
		return fmt.Errorf("marshal price: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OrderID, b.ItemID, b.CustomerID, b.Quantity, b.StartTime.UTC(), b.EndTime.UTC(),
		string(b.Status), string(b.PaymentStatus), b.PaymentReference, string(price), b.LateFee, b.RefundAmount,
		nullTime(b.PickedUpAt), nullTime(b.ReturnedAt), nullTime(b.CancelledAt),
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (t *mysqlTx) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return getBooking(ctx, t.tx, bookingID, true)
}

// UpdateBooking writes the mutable lifecycle columns. Price is frozen at insert.
func (t *mysqlTx) UpdateBooking(ctx context.Context, b domain.Booking) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, payment_status = ?, payment_reference = ?, late_fee = ?, refund_amount = ?,
			picked_up_at = ?, returned_at = ?, cancelled_at = ?, updated_at = ?
		WHERE id = ?`,
		string(b.Status), string(b.PaymentStatus), b.PaymentReference, b.LateFee, b.RefundAmount,
		nullTime(b.PickedUpAt), nullTime(b.ReturnedAt), nullTime(b.CancelledAt), b.UpdatedAt.UTC(),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (t *mysqlTx) AppendEvent(ctx context.Context, e domain.OutboxEvent) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.AggregateID, string(e.EventType), string(e.Payload), e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func overlapQuantity(ctx context.Context, q querier, itemID string, window domain.TimeWindow) (int, error) {
	in, args := holdingStatusArgs()
	args = append([]any{itemID}, args...)
	args = append(args, window.End.UTC(), window.Start.UTC())

	var sum int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM bookings
		WHERE item_id = ? AND status IN `+in+` AND start_time < ? AND end_time > ?`, args...,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum overlap: %w", err)
	}
	return sum, nil
}

func holdingStatusArgs() (string, []any) {
	statuses := domain.StockHoldingStatuses()
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ") + ")", args
}

func getBooking(ctx context.Context, q querier, bookingID string, lock bool) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item        domain.Item
		tiers       []byte
		discounted  decimal.NullDecimal
		depositType string
		minSeconds  int64
		maxSeconds  int64
	)
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.TotalStock, &tiers, &discounted,
		&depositType, &item.Deposit.Value, &minSeconds, &maxSeconds, &item.LateFeePercent,
		&item.AvailableQuantity, &item.Version, &item.Disabled, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}

	if err := json.Unmarshal(tiers, &item.PricingTiers); err != nil {
		return nil, fmt.Errorf("unmarshal pricing tiers: %w", err)
	}
	if discounted.Valid {
		d := discounted.Decimal
		item.DiscountedRate = &d
	}
	item.Deposit.Type = domain.DepositType(depositType)
	item.MinRentalPeriod = time.Duration(minSeconds) * time.Second
	item.MaxRentalPeriod = time.Duration(maxSeconds) * time.Second
	return &item, nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                         domain.Booking
		status, payment           string
		price                     []byte
		pickedUp, returned, cxled sql.NullTime
	)
	err := row.Scan(&b.ID, &b.OrderID, &b.ItemID, &b.CustomerID, &b.Quantity, &b.StartTime, &b.EndTime,
		&status, &payment, &b.PaymentReference, &price, &b.LateFee, &b.RefundAmount,
		&pickedUp, &returned, &cxled, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	if err := json.Unmarshal(price, &b.Price); err != nil {
		return nil, fmt.Errorf("unmarshal price: %w", err)
	}
	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(payment)
	b.PickedUpAt = timePtr(pickedUp)
	b.ReturnedAt = timePtr(returned)
	b.CancelledAt = timePtr(cxled)
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
