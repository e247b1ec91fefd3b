package handler

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

type QuoteHTTPRequest struct {
	ItemID     string    `json:"itemId" validate:"required"`
	Start      time.Time `json:"start" validate:"required"`
	End        time.Time `json:"end" validate:"required"`
	Quantity   int       `json:"quantity" validate:"gte=1"`
	CouponCode string    `json:"couponCode,omitempty"`
}

func (r QuoteHTTPRequest) Window() domain.TimeWindow {
	return domain.NewTimeWindow(r.Start, r.End)
}

// BookingHTTPRequest carries no customer id; it comes from the bearer token.
type BookingHTTPRequest = QuoteHTTPRequest

type StatusHTTPRequest struct {
	Status string     `json:"status" validate:"required"`
	At     *time.Time `json:"at,omitempty"`
}

type PaymentHTTPRequest struct {
	Success   *bool  `json:"success" validate:"required"`
	Reference string `json:"reference" validate:"required"`
}

type CancelHTTPResponse struct {
	RefundAmount decimal.Decimal `json:"refundAmount"`
	Booking      *domain.Booking `json:"booking"`
}

type PaymentHTTPResponse struct {
	Applied bool            `json:"applied"`
	Booking *domain.Booking `json:"booking"`
}

// ItemHTTPRequest takes rental periods as Go duration strings ("2h", "720h").
type ItemHTTPRequest struct {
	ID              string               `json:"id,omitempty"`
	Name            string               `json:"name" validate:"required"`
	TotalStock      int                  `json:"totalStock" validate:"gte=1"`
	PricingTiers    []domain.PricingTier `json:"pricingTiers" validate:"required,min=1"`
	DiscountedRate  *decimal.Decimal     `json:"discountedRate,omitempty"`
	Deposit         domain.DepositRule   `json:"deposit"`
	MinRentalPeriod string               `json:"minRentalPeriod,omitempty"`
	MaxRentalPeriod string               `json:"maxRentalPeriod,omitempty"`
	LateFeePercent  decimal.Decimal      `json:"lateFeePercent"`
}

func (r ItemHTTPRequest) toItem(ownerID string) (domain.Item, error) {
	minPeriod, err := parseOptionalDuration("minRentalPeriod", r.MinRentalPeriod)
	if err != nil {
		return domain.Item{}, err
	}
	maxPeriod, err := parseOptionalDuration("maxRentalPeriod", r.MaxRentalPeriod)
	if err != nil {
		return domain.Item{}, err
	}

	return domain.Item{
		ID:              r.ID,
		OwnerID:         ownerID,
		Name:            r.Name,
		TotalStock:      r.TotalStock,
		PricingTiers:    r.PricingTiers,
		DiscountedRate:  r.DiscountedRate,
		Deposit:         r.Deposit,
		MinRentalPeriod: minPeriod,
		MaxRentalPeriod: maxPeriod,
		LateFeePercent:  r.LateFeePercent,
	}, nil
}

func parseOptionalDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, domain.Validation("%s: invalid duration %q", field, value)
	}
	return d, nil
}

type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(req interface{}) error {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return domain.Validation("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return domain.Validation("%s failed %s", fe.Field(), fe.Tag())
	}
	return domain.Validation("invalid request: %v", err)
}
