package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

type refundStep struct {
	notice  time.Duration
	percent decimal.Decimal
}

// Cancellation refund schedule by notice given before the booked start.
// Cancelling after the start still returns afterStartPercent.
var (
	refundSchedule = []refundStep{
		{7 * 24 * time.Hour, decimal.NewFromInt(100)},
		{72 * time.Hour, decimal.NewFromInt(90)},
		{24 * time.Hour, decimal.NewFromInt(50)},
		{0, decimal.NewFromInt(25)},
	}
	afterStartPercent = decimal.NewFromInt(10)
)

// RefundPercent returns the share of the refundable amount returned when a
// booking starting at start is cancelled at cancelledAt.
func RefundPercent(start, cancelledAt time.Time) decimal.Decimal {
	notice := start.Sub(cancelledAt)
	for _, step := range refundSchedule {
		if notice >= step.notice {
			return step.percent
		}
	}
	return afterStartPercent
}

// Refund computes the amount owed back on cancellation. Nothing is owed on an
// unpaid booking. The deposit is returned in full.
func Refund(b domain.Booking, cancelledAt time.Time) decimal.Decimal {
	if b.PaymentStatus != domain.PaymentPaid {
		return decimal.Zero
	}
	pct := RefundPercent(b.StartTime, cancelledAt)
	refund := b.Price.Refundable().Mul(pct).Div(hundred).Add(b.Price.Deposit)
	return round(refund)
}

// OverdueDays is the whole number of days, rounded up, that returnedAt is past end.
func OverdueDays(end, returnedAt time.Time) int64 {
	if !returnedAt.After(end) {
		return 0
	}
	over := returnedAt.Sub(end)
	day := 24 * time.Hour
	days := int64(over / day)
	if over%day != 0 {
		days++
	}
	return days
}

// LateFee charges the item's late fee percentage of the original subtotal per overdue day.
func LateFee(item domain.Item, b domain.Booking, returnedAt time.Time) decimal.Decimal {
	days := OverdueDays(b.EndTime, returnedAt)
	if days == 0 || !item.LateFeePercent.IsPositive() {
		return decimal.Zero
	}
	fee := b.Price.Subtotal.Mul(item.LateFeePercent).Div(hundred).Mul(decimal.NewFromInt(days))
	return round(fee)
}
