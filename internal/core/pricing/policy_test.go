package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

func TestRefund(t *testing.T) {
	start := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)
	booking := domain.Booking{
		StartTime:     start,
		EndTime:       start.Add(4 * time.Hour),
		PaymentStatus: domain.PaymentPaid,
		Price:         domain.PriceBreakdown{Total: dec("110"), Deposit: dec("10")},
	}

	tests := []struct {
		name   string
		notice time.Duration
		want   string
	}{
		{"a week ahead", 8 * 24 * time.Hour, "110"},
		{"exactly seven days", 7 * 24 * time.Hour, "110"},
		{"four days ahead", 96 * time.Hour, "100"},
		{"two days ahead", 48 * time.Hour, "60"},
		{"same day", 2 * time.Hour, "35"},
		{"at start", 0, "35"},
		{"after start", -time.Hour, "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMoney(t, tt.want, Refund(booking, start.Add(-tt.notice)))
		})
	}
}

func TestRefund_UnpaidOwesNothing(t *testing.T) {
	start := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)
	booking := domain.Booking{
		StartTime:     start,
		PaymentStatus: domain.PaymentUnpaid,
		Price:         domain.PriceBreakdown{Total: dec("110"), Deposit: dec("10")},
	}
	assert.True(t, Refund(booking, start.Add(-30*24*time.Hour)).IsZero())
}

func TestLateFee(t *testing.T) {
	end := time.Date(2030, 5, 10, 16, 0, 0, 0, time.UTC)
	item := domain.Item{LateFeePercent: dec("10")}
	booking := domain.Booking{
		EndTime: end,
		Price:   domain.PriceBreakdown{Subtotal: dec("200")},
	}

	assert.True(t, LateFee(item, booking, end).IsZero())
	assert.True(t, LateFee(item, booking, end.Add(-time.Hour)).IsZero())
	assertMoney(t, "20", LateFee(item, booking, end.Add(time.Minute)))
	assertMoney(t, "40", LateFee(item, booking, end.Add(25*time.Hour)))

	item.LateFeePercent = dec("0")
	assert.True(t, LateFee(item, booking, end.Add(72*time.Hour)).IsZero())
}

func TestOverdueDays(t *testing.T) {
	end := time.Date(2030, 5, 10, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(0), OverdueDays(end, end))
	assert.Equal(t, int64(1), OverdueDays(end, end.Add(24*time.Hour)))
	assert.Equal(t, int64(2), OverdueDays(end, end.Add(24*time.Hour+time.Second)))
}
