package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/rental-booking/internal/core/domain"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string
	GRPCPort string

	StoreDriver string // memory or mysql
	MySQLDSN    string
	RedisAddr   string
	KafkaBroker []string
	KafkaTopic  string

	JWTSecret string

	PricingVariant     domain.PricingVariant
	PlatformFeePercent decimal.Decimal
	PaymentFeePercent  decimal.Decimal
	PaymentFeeFixed    decimal.Decimal
	TaxPercent         decimal.Decimal
	QuoteValidity      time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	ItemCacheTTL         time.Duration
	AvailabilityCacheTTL time.Duration

	RateLimit       int
	RateLimitWindow time.Duration

	PendingHoldTTL  time.Duration
	SweepInterval   time.Duration
	OutboxInterval  time.Duration
	OutboxBatchSize int
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment, falling back to defaults
// suitable for local development.
func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50051"),

		StoreDriver: getEnv("STORE_DRIVER", "memory"),
		MySQLDSN:    getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/rental?parseTime=true"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		KafkaBroker: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "booking-events"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		PricingVariant:     domain.PricingVariant(getEnv("PRICING_VARIANT", string(domain.VariantMarketplace))),
		PlatformFeePercent: getEnvDecimal("PLATFORM_FEE_PERCENT", "5"),
		PaymentFeePercent:  getEnvDecimal("PAYMENT_FEE_PERCENT", "2.9"),
		PaymentFeeFixed:    getEnvDecimal("PAYMENT_FEE_FIXED", "0.30"),
		TaxPercent:         getEnvDecimal("TAX_PERCENT", "18"),
		QuoteValidity:      getEnvDuration("QUOTE_VALIDITY", 30*time.Minute),

		RetryAttempts:  getEnvInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay: getEnvDuration("RETRY_BASE_DELAY", 20*time.Millisecond),
		RetryMaxDelay:  getEnvDuration("RETRY_MAX_DELAY", 200*time.Millisecond),

		ItemCacheTTL:         getEnvDuration("ITEM_CACHE_TTL", 30*time.Second),
		AvailabilityCacheTTL: getEnvDuration("AVAILABILITY_CACHE_TTL", 5*time.Second),

		RateLimit:       getEnvInt("RATE_LIMIT", 20),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		PendingHoldTTL:  getEnvDuration("PENDING_HOLD_TTL", 30*time.Minute),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 30*time.Second),
		OutboxInterval:  getEnvDuration("OUTBOX_INTERVAL", time.Second),
		OutboxBatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 100),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return decimal.RequireFromString(defaultValue)
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
