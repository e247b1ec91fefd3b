package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

func TestQuote_BasicVariant(t *testing.T) {
	f := newFixture(t, domain.VariantBasic)
	item := f.addItem(t, 3)

	price, err := f.quotes.Quote(context.Background(), QuoteRequest{
		ItemID:   item.ID,
		Window:   domain.NewTimeWindow(at(10, 0), at(10, 30)),
		Quantity: 2,
	})
	require.NoError(t, err)

	// Thirty minutes bill as one hour.
	assert.Equal(t, domain.UnitHour, price.Unit)
	assert.Equal(t, int64(1), price.UnitCount)
	assert.True(t, price.Subtotal.Equal(dec("100")), "got %s", price.Subtotal)
	assert.True(t, price.Total.Equal(dec("140")), "got %s", price.Total)
	assert.Empty(t, price.Fees)
}

func TestQuote_MarketplaceUsesCustomerAndCoupon(t *testing.T) {
	f := newFixture(t, domain.VariantMarketplace)
	ctx := context.Background()
	item := f.addItem(t, 3)

	require.NoError(t, f.catalog.RegisterCoupon(ctx, domain.Coupon{
		Code:   "TEN",
		Type:   domain.CouponAmount,
		Value:  decimal.NewFromInt(10),
		Active: true,
	}))

	req := QuoteRequest{
		ItemID:     item.ID,
		CustomerID: "new-customer",
		Window:     domain.NewTimeWindow(at(10, 0), at(14, 0)),
		Quantity:   1,
		CouponCode: "TEN",
	}
	price, err := f.quotes.Quote(ctx, req)
	require.NoError(t, err)

	codes := make([]string, 0, len(price.Discounts))
	for _, d := range price.Discounts {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"first_time", "coupon:TEN"}, codes)
	assert.True(t, price.DiscountTotal.Equal(dec("30")), "got %s", price.DiscountTotal)
	assert.Equal(t, testNow.Add(30*time.Minute), price.ValidUntil)

	again, err := f.quotes.Quote(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, price, again, "quotes are deterministic for the same inputs")
}

func TestQuote_RejectsUnusableCoupon(t *testing.T) {
	f := newFixture(t, domain.VariantMarketplace)
	ctx := context.Background()
	item := f.addItem(t, 3)

	expired := testNow.Add(-time.Hour)
	require.NoError(t, f.catalog.RegisterCoupon(ctx, domain.Coupon{
		Code:      "OLD",
		Type:      domain.CouponPercent,
		Value:     decimal.NewFromInt(5),
		Active:    true,
		ExpiresAt: &expired,
	}))

	_, err := f.quotes.Quote(ctx, QuoteRequest{
		ItemID:     item.ID,
		Window:     domain.NewTimeWindow(at(10, 0), at(14, 0)),
		Quantity:   1,
		CouponCode: "OLD",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
