package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercent CouponType = "percent"
	CouponAmount  CouponType = "amount"
)

type Coupon struct {
	Code        string          `json:"code"`
	Type        CouponType      `json:"type"`
	Value       decimal.Decimal `json:"value"`
	MinSpend    decimal.Decimal `json:"minSpend"`
	MaxDiscount decimal.Decimal `json:"maxDiscount"` // zero means uncapped
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
	Active      bool            `json:"active"`
}

func (c Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}

func (c Coupon) Validate() error {
	if c.Code == "" {
		return Validation("coupon code is required")
	}
	switch c.Type {
	case CouponPercent:
		if !c.Value.IsPositive() || c.Value.GreaterThan(decimal.NewFromInt(100)) {
			return Validation("percent coupon value must be in (0, 100]")
		}
	case CouponAmount:
		if !c.Value.IsPositive() {
			return Validation("amount coupon value must be positive")
		}
	default:
		return Validation("unknown coupon type %q", c.Type)
	}
	if c.MinSpend.IsNegative() || c.MaxDiscount.IsNegative() {
		return Validation("coupon limits must not be negative")
	}
	return nil
}

// CustomerStats feeds first-time and loyalty discounts.
type CustomerStats struct {
	CustomerID        string `json:"customerId"`
	TotalBookings     int    `json:"totalBookings"`
	CompletedBookings int    `json:"completedBookings"`
}

func (s CustomerStats) FirstTime() bool {
	return s.TotalBookings == 0
}
