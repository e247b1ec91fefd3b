package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, domain.VariantMarketplace, cfg.PricingVariant)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 30*time.Minute, cfg.PendingHoldTTL)
	assert.Equal(t, 30*time.Minute, cfg.QuoteValidity)
	assert.Equal(t, "18", cfg.TaxPercent.String())
	assert.Empty(t, cfg.KafkaBroker)
	assert.False(t, cfg.Production())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TAX_PERCENT", "7.5")
	t.Setenv("PRICING_VARIANT", "basic")
	t.Setenv("RETRY_BASE_DELAY", "not-a-duration")
	t.Setenv("QUOTE_VALIDITY", "5m")
	t.Setenv("PENDING_HOLD_TTL", "45m")

	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, "mysql", cfg.StoreDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBroker)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "7.5", cfg.TaxPercent.String())
	assert.Equal(t, domain.VariantBasic, cfg.PricingVariant)
	assert.Equal(t, 20*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 5*time.Minute, cfg.QuoteValidity)
	assert.Equal(t, 45*time.Minute, cfg.PendingHoldTTL)
}
