package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/rl1809/rental-booking/internal/adapter/event"
	"github.com/rl1809/rental-booking/internal/adapter/handler"
	"github.com/rl1809/rental-booking/internal/adapter/storage"
	"github.com/rl1809/rental-booking/internal/config"
	"github.com/rl1809/rental-booking/internal/core/pricing"
	"github.com/rl1809/rental-booking/internal/core/service"
	"github.com/rl1809/rental-booking/internal/logger"
	"github.com/rl1809/rental-booking/internal/port"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize store
	var (
		store port.BookingStore
		db    *sql.DB
	)
	switch cfg.StoreDriver {
	case "mysql":
		var err error
		db, err = openMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize mysql")
		}
		store = storage.NewMySQLAdapter(db)
		log.Info("connected to mysql")
	case "memory":
		store = storage.NewMemoryAdapter()
		log.Warn("using in-memory store, bookings are lost on restart")
	default:
		log.WithField("driver", cfg.StoreDriver).Fatal("unknown STORE_DRIVER")
	}

	// Initialize Redis
	var (
		cache port.CacheRepository = storage.NopCache{}
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache never gates a booking; the breaker handles it coming back.
			log.WithError(err).Warn("redis not reachable at startup")
		}
		cache = storage.NewRedisAdapter(rdb, storage.RedisOptions{
			ItemTTL:         cfg.ItemCacheTTL,
			AvailabilityTTL: cfg.AvailabilityCacheTTL,
		})
		log.WithField("addr", cfg.RedisAddr).Info("redis cache enabled")
	} else {
		log.Warn("REDIS_ADDR not set, running without cache and rate limiting")
	}

	// Initialize event publisher
	var publisher port.EventPublisher
	if len(cfg.KafkaBroker) > 0 {
		publisher = event.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBroker...)
		log.WithFields(log.Fields{"brokers": cfg.KafkaBroker, "topic": cfg.KafkaTopic}).Info("publishing events to kafka")
	} else {
		publisher = event.NewLogPublisher(log.StandardLogger())
	}

	// Initialize services
	pricingCfg := pricing.DefaultConfig()
	pricingCfg.Variant = cfg.PricingVariant
	pricingCfg.PlatformFeePercent = cfg.PlatformFeePercent
	pricingCfg.PaymentFeePercent = cfg.PaymentFeePercent
	pricingCfg.PaymentFeeFixed = cfg.PaymentFeeFixed
	pricingCfg.TaxPercent = cfg.TaxPercent
	pricingCfg.QuoteValidity = cfg.QuoteValidity
	engine := pricing.NewEngine(pricingCfg)

	retry := service.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}

	catalog := service.NewCatalogService(store, cache)
	quotes := service.NewQuoteService(store, catalog, engine)
	bookings := service.NewBookingService(store, catalog, quotes, retry)
	lifecycle := service.NewLifecycleService(store, cache, catalog, retry)
	availability := service.NewAvailabilityService(store, cache, catalog)

	// Start background workers
	var wg sync.WaitGroup
	poller := service.NewOutboxPoller(store, publisher, cfg.OutboxInterval, cfg.OutboxBatchSize)
	sweeper := service.NewPendingSweeper(lifecycle, cfg.PendingHoldTTL, cfg.SweepInterval)
	grpcHandler := handler.NewGRPCHandler(store)
	for _, run := range []func(context.Context){
		poller.Run,
		sweeper.Run,
		func(ctx context.Context) { grpcHandler.Watch(ctx, 10*time.Second) },
	} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}
	log.WithFields(log.Fields{
		"variant":          engine.Variant(),
		"pending_hold_ttl": cfg.PendingHoldTTL,
	}).Info("started outbox poller and pending sweeper")

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	grpcHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.WithError(err).Fatal("failed to listen")
	}

	go func() {
		log.Infof("gRPC server listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC server error")
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(handler.Services{
		Catalog:      catalog,
		Availability: availability,
		Quotes:       quotes,
		Bookings:     bookings,
		Lifecycle:    lifecycle,
	}, store, cache, handler.Options{
		JWTSecret:  cfg.JWTSecret,
		Production: cfg.Production(),
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateLimitWindow,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpHandler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown")
	}
	log.Info("HTTP server stopped")

	// Stop gRPC server
	grpcHandler.Shutdown()
	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	// Stop workers, then flush what the last requests wrote to the outbox
	cancel()
	wg.Wait()
	if n := poller.PublishPending(shutdownCtx); n > 0 {
		log.WithField("count", n).Info("flushed outbox on shutdown")
	}
	log.Info("workers stopped")

	// Close connections
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("close publisher")
	}
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	log.Info("connections closed")
}

func openMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
