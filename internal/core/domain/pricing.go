package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PricingVariant string

const (
	VariantBasic       PricingVariant = "basic"
	VariantMarketplace PricingVariant = "marketplace"
)

// TierOption is one candidate tier evaluated for a window, for a single unit of stock.
type TierOption struct {
	Unit      RateUnit        `json:"unit"`
	UnitCount int64           `json:"unitCount"`
	Rate      decimal.Decimal `json:"rate"`
	Total     decimal.Decimal `json:"total"`
	PerMinute decimal.Decimal `json:"perMinute"`
}

// LineItem is an itemized adjustment, discount or fee. Factor is set for
// multiplicative modifiers.
type LineItem struct {
	Code   string           `json:"code"`
	Label  string           `json:"label"`
	Factor *decimal.Decimal `json:"factor,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
}

// PriceBreakdown is frozen onto a booking at creation and never recomputed.
type PriceBreakdown struct {
	Variant   PricingVariant  `json:"variant"`
	Unit      RateUnit        `json:"unit"`
	UnitCount int64           `json:"unitCount"`
	Rate      decimal.Decimal `json:"rate"`
	Quantity  int             `json:"quantity"`

	// UnitTotal is the chosen tier's price of the window for one unit of stock.
	UnitTotal decimal.Decimal `json:"unitTotal"`
	Options   []TierOption    `json:"options"`
	Savings   decimal.Decimal `json:"savings"`

	BaseSubtotal       decimal.Decimal `json:"baseSubtotal"`
	Adjustments        []LineItem      `json:"adjustments"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discounts          []LineItem      `json:"discounts"`
	DiscountTotal      decimal.Decimal `json:"discountTotal"`
	DiscountedSubtotal decimal.Decimal `json:"discountedSubtotal"`
	Deposit            decimal.Decimal `json:"deposit"`
	Fees               []LineItem      `json:"fees"`
	FeeTotal           decimal.Decimal `json:"feeTotal"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`

	QuotedAt   time.Time `json:"quotedAt"`
	ValidUntil time.Time `json:"validUntil"`
}

// Refundable is the part of the total subject to the cancellation policy.
// The deposit is always returned in full.
func (p PriceBreakdown) Refundable() decimal.Decimal {
	r := p.Total.Sub(p.Deposit)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
