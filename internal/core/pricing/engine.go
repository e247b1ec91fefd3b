package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

var (
	hundred   = decimal.NewFromInt(100)
	minuteDec = decimal.NewFromInt(60)
)

type Config struct {
	Variant            domain.PricingVariant
	PlatformFeePercent decimal.Decimal
	PaymentFeePercent  decimal.Decimal
	PaymentFeeFixed    decimal.Decimal
	TaxPercent         decimal.Decimal
	QuoteValidity      time.Duration
	PeakMonths         []time.Month
}

func DefaultConfig() Config {
	return Config{
		Variant:            domain.VariantMarketplace,
		PlatformFeePercent: decimal.NewFromInt(5),
		PaymentFeePercent:  decimal.RequireFromString("2.9"),
		PaymentFeeFixed:    decimal.RequireFromString("0.30"),
		TaxPercent:         decimal.NewFromInt(18),
		QuoteValidity:      30 * time.Minute,
		PeakMonths:         []time.Month{time.December, time.June, time.July},
	}
}

// Context carries the per-request inputs that are not part of the catalog.
// Now is supplied by the caller so that a quote is reproducible.
type Context struct {
	Now               time.Time
	FirstTimeCustomer bool
	CompletedBookings int
	RecentBookings    int
	Coupon            *domain.Coupon
}

// Engine prices a rental window. It holds no mutable state and performs no I/O.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Variant == "" {
		cfg.Variant = domain.VariantMarketplace
	}
	if cfg.QuoteValidity <= 0 {
		cfg.QuoteValidity = 30 * time.Minute
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Variant() domain.PricingVariant {
	return e.cfg.Variant
}

func (e *Engine) Calculate(item domain.Item, window domain.TimeWindow, quantity int, pctx Context) (domain.PriceBreakdown, error) {
	if err := window.Validate(); err != nil {
		return domain.PriceBreakdown{}, err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.PriceBreakdown{}, err
	}
	if len(item.PricingTiers) == 0 {
		return domain.PriceBreakdown{}, domain.Validation("item %s has no pricing tiers", item.ID)
	}

	d := window.Duration()
	if item.MinRentalPeriod > 0 && d < item.MinRentalPeriod {
		return domain.PriceBreakdown{}, domain.Validation("rental of %s is shorter than the minimum %s", d, item.MinRentalPeriod)
	}
	if item.MaxRentalPeriod > 0 && d > item.MaxRentalPeriod {
		return domain.PriceBreakdown{}, domain.Validation("rental of %s exceeds the maximum %s", d, item.MaxRentalPeriod)
	}

	options, chosen, err := tierOptions(item.PricingTiers, d)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	mostExpensive := chosen.Total
	for _, o := range options {
		if o.Total.GreaterThan(mostExpensive) {
			mostExpensive = o.Total
		}
	}

	var (
		base        = chosen.Total.Mul(qty)
		subtotal    = base
		adjustments []domain.LineItem
		discounts   []domain.LineItem
		fees        []domain.LineItem
		tax         = decimal.Zero
	)

	if e.cfg.Variant == domain.VariantMarketplace {
		subtotal, adjustments = e.applyModifiers(base, window, quantity, pctx)
	}

	discounted := subtotal
	if e.cfg.Variant == domain.VariantMarketplace {
		discounted, discounts = applyDiscounts(subtotal, item, pctx)
	}

	deposit := computeDeposit(item.Deposit, discounted, chosen.UnitCount, quantity)

	feeTotal := decimal.Zero
	if e.cfg.Variant == domain.VariantMarketplace {
		fees, feeTotal = e.applyFees(discounted)
		tax = discounted.Add(feeTotal).Mul(e.cfg.TaxPercent).Div(hundred)
	}

	total := discounted.Add(deposit).Add(feeTotal).Add(tax)

	return domain.PriceBreakdown{
		Variant:            e.cfg.Variant,
		Unit:               chosen.Unit,
		UnitCount:          chosen.UnitCount,
		Rate:               chosen.Rate,
		Quantity:           quantity,
		UnitTotal:          round(chosen.Total),
		Options:            roundOptions(options),
		Savings:            round(mostExpensive.Sub(chosen.Total).Mul(qty)),
		BaseSubtotal:       round(base),
		Adjustments:        roundLines(adjustments),
		Subtotal:           round(subtotal),
		Discounts:          roundLines(discounts),
		DiscountTotal:      round(subtotal.Sub(discounted)),
		DiscountedSubtotal: round(discounted),
		Deposit:            round(deposit),
		Fees:               roundLines(fees),
		FeeTotal:           round(feeTotal),
		Tax:                round(tax),
		Total:              round(total),
		QuotedAt:           pctx.Now.UTC(),
		ValidUntil:         pctx.Now.UTC().Add(e.cfg.QuoteValidity),
	}, nil
}

// tierOptions evaluates every tier for one unit of stock and picks the one with
// the lowest cost per elapsed minute. Ties go to the shorter unit.
func tierOptions(tiers []domain.PricingTier, d time.Duration) ([]domain.TierOption, domain.TierOption, error) {
	minutes := decimal.NewFromInt(int64(d / time.Second)).Div(minuteDec)
	if !minutes.IsPositive() {
		return nil, domain.TierOption{}, domain.Validation("rental window must be at least one second")
	}

	options := make([]domain.TierOption, 0, len(tiers))
	for _, tier := range tiers {
		unit := tier.Unit.Duration()
		if unit <= 0 {
			return nil, domain.TierOption{}, domain.Validation("unknown pricing unit %q", tier.Unit)
		}
		count := int64(d / unit)
		if d%unit != 0 {
			count++
		}
		total := tier.Rate.Mul(decimal.NewFromInt(count))
		options = append(options, domain.TierOption{
			Unit:      tier.Unit,
			UnitCount: count,
			Rate:      tier.Rate,
			Total:     total,
			PerMinute: total.Div(minutes),
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Unit.Duration() < options[j].Unit.Duration()
	})

	chosen := options[0]
	for _, o := range options[1:] {
		if o.PerMinute.LessThan(chosen.PerMinute) {
			chosen = o
		}
	}
	return options, chosen, nil
}

func computeDeposit(rule domain.DepositRule, discounted decimal.Decimal, unitCount int64, quantity int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	switch rule.Type {
	case domain.DepositFlat:
		return rule.Value.Mul(qty)
	case domain.DepositPercent:
		if unitCount == 0 {
			return decimal.Zero
		}
		unitPrice := discounted.Div(decimal.NewFromInt(unitCount).Mul(qty))
		return unitPrice.Mul(rule.Value).Div(hundred).Mul(qty)
	}
	return decimal.Zero
}

func (e *Engine) applyFees(discounted decimal.Decimal) ([]domain.LineItem, decimal.Decimal) {
	platform := discounted.Mul(e.cfg.PlatformFeePercent).Div(hundred)
	running := discounted.Add(platform)
	payment := running.Mul(e.cfg.PaymentFeePercent).Div(hundred).Add(e.cfg.PaymentFeeFixed)

	fees := []domain.LineItem{
		{Code: "platform_fee", Label: "Platform fee", Amount: platform},
		{Code: "payment_fee", Label: "Payment processing fee", Amount: payment},
	}
	return fees, platform.Add(payment)
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func roundLines(lines []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(lines))
	for i, l := range lines {
		l.Amount = round(l.Amount)
		out[i] = l
	}
	return out
}

func roundOptions(options []domain.TierOption) []domain.TierOption {
	out := make([]domain.TierOption, len(options))
	for i, o := range options {
		o.Total = round(o.Total)
		o.PerMinute = o.PerMinute.Round(4)
		out[i] = o
	}
	return out
}
