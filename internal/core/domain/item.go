package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RateUnit string

const (
	UnitHour  RateUnit = "hour"
	UnitDay   RateUnit = "day"
	UnitWeek  RateUnit = "week"
	UnitMonth RateUnit = "month"
)

// Duration of one billing unit. A month is fixed at 30 days.
func (u RateUnit) Duration() time.Duration {
	switch u {
	case UnitHour:
		return time.Hour
	case UnitDay:
		return 24 * time.Hour
	case UnitWeek:
		return 7 * 24 * time.Hour
	case UnitMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

func (u RateUnit) Minutes() int64 {
	return int64(u.Duration() / time.Minute)
}

func (u RateUnit) Valid() bool {
	return u.Duration() > 0
}

type PricingTier struct {
	Unit RateUnit        `json:"unit"`
	Rate decimal.Decimal `json:"rate"`
}

type DepositType string

const (
	DepositFlat    DepositType = "flat"
	DepositPercent DepositType = "percent"
)

type DepositRule struct {
	Type  DepositType     `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type Item struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	Name            string           `json:"name"`
	TotalStock      int              `json:"totalStock"`
	PricingTiers    []PricingTier    `json:"pricingTiers"`
	DiscountedRate  *decimal.Decimal `json:"discountedRate,omitempty"`
	Deposit         DepositRule      `json:"deposit"`
	MinRentalPeriod time.Duration    `json:"minRentalPeriod"`
	MaxRentalPeriod time.Duration    `json:"maxRentalPeriod"`
	LateFeePercent  decimal.Decimal  `json:"lateFeePercent"`

	// AvailableQuantity is an advisory counter of stock not held by
	// outstanding bookings. It is never consulted for a commit decision.
	AvailableQuantity int  `json:"availableQuantity"`
	Version           int  `json:"version"` // optimistic locking
	Disabled          bool `json:"disabled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (i Item) Validate() error {
	if i.Name == "" {
		return Validation("item name is required")
	}
	if i.TotalStock < 1 {
		return Validation("totalStock must be at least 1, got %d", i.TotalStock)
	}
	if len(i.PricingTiers) == 0 {
		return Validation("at least one pricing tier is required")
	}
	seen := make(map[RateUnit]bool, len(i.PricingTiers))
	for _, tier := range i.PricingTiers {
		if !tier.Unit.Valid() {
			return Validation("unknown pricing unit %q", tier.Unit)
		}
		if seen[tier.Unit] {
			return Validation("duplicate pricing unit %q", tier.Unit)
		}
		seen[tier.Unit] = true
		if !tier.Rate.IsPositive() {
			return Validation("rate for unit %q must be positive", tier.Unit)
		}
	}
	if i.DiscountedRate != nil && i.DiscountedRate.IsNegative() {
		return Validation("discountedRate must not be negative")
	}
	switch i.Deposit.Type {
	case "", DepositFlat:
	case DepositPercent:
		if i.Deposit.Value.GreaterThan(decimal.NewFromInt(100)) {
			return Validation("percent deposit must not exceed 100")
		}
	default:
		return Validation("unknown deposit type %q", i.Deposit.Type)
	}
	if i.Deposit.Value.IsNegative() {
		return Validation("deposit value must not be negative")
	}
	if i.LateFeePercent.IsNegative() {
		return Validation("lateFeePercent must not be negative")
	}
	if i.MinRentalPeriod < 0 || i.MaxRentalPeriod < 0 {
		return Validation("rental periods must not be negative")
	}
	if i.MaxRentalPeriod > 0 && i.MinRentalPeriod > i.MaxRentalPeriod {
		return Validation("minRentalPeriod exceeds maxRentalPeriod")
	}
	return nil
}

// PrimaryTier is the first configured tier, the reference rate for promotions.
func (i Item) PrimaryTier() (PricingTier, bool) {
	if len(i.PricingTiers) == 0 {
		return PricingTier{}, false
	}
	return i.PricingTiers[0], true
}

// Bookable reports whether new bookings may be placed against the item.
func (i Item) Bookable() bool {
	return !i.Disabled
}
