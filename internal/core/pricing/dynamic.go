package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

// Modifier thresholds and factors. Applied in declaration order.
var (
	weekendFactor = decimal.RequireFromString("1.10")

	longDurationWeek  = 7 * 24 * time.Hour
	longDurationMonth = 30 * 24 * time.Hour
	longWeekFactor    = decimal.RequireFromString("0.90")
	longMonthFactor   = decimal.RequireFromString("0.80")

	seasonFactor = decimal.RequireFromString("1.15")

	bulkSmall       = 5
	bulkLarge       = 10
	bulkSmallFactor = decimal.RequireFromString("0.92")
	bulkLargeFactor = decimal.RequireFromString("0.85")

	earlyShort       = 14 * 24 * time.Hour
	earlyLong        = 30 * 24 * time.Hour
	earlyShortFactor = decimal.RequireFromString("0.95")
	earlyLongFactor  = decimal.RequireFromString("0.90")

	popularBookings = 20
	popularFactor   = decimal.RequireFromString("1.05")
)

var (
	firstTimePercent = decimal.NewFromInt(10)
	loyaltySilver    = 10
	loyaltyGold      = 25
	loyaltySilverPct = decimal.NewFromInt(5)
	loyaltyGoldPct   = decimal.NewFromInt(10)
)

type modifier struct {
	code, label string
	factor      decimal.Decimal
}

func (e *Engine) modifiers(window domain.TimeWindow, quantity int, pctx Context) []modifier {
	var mods []modifier

	if includesWeekend(window) {
		mods = append(mods, modifier{"weekend", "Weekend surcharge", weekendFactor})
	}

	switch d := window.Duration(); {
	case d >= longDurationMonth:
		mods = append(mods, modifier{"long_duration", "Monthly rental discount", longMonthFactor})
	case d >= longDurationWeek:
		mods = append(mods, modifier{"long_duration", "Weekly rental discount", longWeekFactor})
	}

	if e.peakMonth(window.Start.Month()) {
		mods = append(mods, modifier{"season", "High season surcharge", seasonFactor})
	}

	switch {
	case quantity >= bulkLarge:
		mods = append(mods, modifier{"bulk", "Bulk quantity discount", bulkLargeFactor})
	case quantity >= bulkSmall:
		mods = append(mods, modifier{"bulk", "Bulk quantity discount", bulkSmallFactor})
	}

	if !pctx.Now.IsZero() {
		switch lead := window.Start.Sub(pctx.Now); {
		case lead >= earlyLong:
			mods = append(mods, modifier{"early_booking", "Early booking discount", earlyLongFactor})
		case lead >= earlyShort:
			mods = append(mods, modifier{"early_booking", "Early booking discount", earlyShortFactor})
		}
	}

	if pctx.RecentBookings >= popularBookings {
		mods = append(mods, modifier{"popularity", "High demand surcharge", popularFactor})
	}
	return mods
}

// applyModifiers runs each multiplicative modifier against the running amount and
// records the delta it produced.
func (e *Engine) applyModifiers(base decimal.Decimal, window domain.TimeWindow, quantity int, pctx Context) (decimal.Decimal, []domain.LineItem) {
	running := base
	var lines []domain.LineItem
	for _, m := range e.modifiers(window, quantity, pctx) {
		next := running.Mul(m.factor)
		factor := m.factor
		lines = append(lines, domain.LineItem{
			Code:   m.code,
			Label:  m.label,
			Factor: &factor,
			Amount: next.Sub(running),
		})
		running = next
	}
	return running, lines
}

// applyDiscounts subtracts each discount from the running amount, never going below zero.
func applyDiscounts(subtotal decimal.Decimal, item domain.Item, pctx Context) (decimal.Decimal, []domain.LineItem) {
	running := subtotal
	var lines []domain.LineItem

	take := func(code, label string, amount decimal.Decimal) {
		if !amount.IsPositive() {
			return
		}
		if amount.GreaterThan(running) {
			amount = running
		}
		running = running.Sub(amount)
		lines = append(lines, domain.LineItem{Code: code, Label: label, Amount: amount})
	}

	if pctx.FirstTimeCustomer {
		take("first_time", "First booking discount", percentOf(running, firstTimePercent))
	}

	switch {
	case pctx.CompletedBookings >= loyaltyGold:
		take("loyalty", "Loyalty discount", percentOf(running, loyaltyGoldPct))
	case pctx.CompletedBookings >= loyaltySilver:
		take("loyalty", "Loyalty discount", percentOf(running, loyaltySilverPct))
	}

	if fraction, ok := promotionFraction(item); ok {
		take("promotion", "Promotional rate", running.Mul(fraction))
	}

	if c := pctx.Coupon; c != nil && c.Usable(pctx.Now) && running.GreaterThanOrEqual(c.MinSpend) {
		var amount decimal.Decimal
		switch c.Type {
		case domain.CouponPercent:
			amount = percentOf(running, c.Value)
		case domain.CouponAmount:
			amount = c.Value
		}
		if c.MaxDiscount.IsPositive() && amount.GreaterThan(c.MaxDiscount) {
			amount = c.MaxDiscount
		}
		take("coupon:"+c.Code, "Coupon "+c.Code, amount)
	}

	return running, lines
}

// promotionFraction is the share taken off by the item's discounted rate,
// relative to its primary tier rate.
func promotionFraction(item domain.Item) (decimal.Decimal, bool) {
	if item.DiscountedRate == nil {
		return decimal.Zero, false
	}
	primary, ok := item.PrimaryTier()
	if !ok || !primary.Rate.IsPositive() || !item.DiscountedRate.LessThan(primary.Rate) {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(1).Sub(item.DiscountedRate.Div(primary.Rate)), true
}

func (e *Engine) peakMonth(m time.Month) bool {
	for _, p := range e.cfg.PeakMonths {
		if p == m {
			return true
		}
	}
	return false
}

// includesWeekend reports whether any instant of the window falls on a
// Saturday or Sunday (UTC).
func includesWeekend(w domain.TimeWindow) bool {
	if w.Duration() >= 7*24*time.Hour {
		return true
	}
	start := w.Start.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for day.Before(w.End) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			if w.Overlaps(domain.TimeWindow{Start: day, End: day.AddDate(0, 0, 1)}) {
				return true
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return false
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}
