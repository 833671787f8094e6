package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/infrastructure/auth"
	"github.com/mobilia/backend/internal/infrastructure/cache"
	"github.com/mobilia/backend/internal/infrastructure/config"
	"github.com/mobilia/backend/internal/infrastructure/event"
	"github.com/mobilia/backend/internal/infrastructure/logger"
	"github.com/mobilia/backend/internal/infrastructure/persistence"
	"github.com/mobilia/backend/internal/infrastructure/telemetry"
	"github.com/mobilia/backend/internal/interfaces/http/handler"
	"github.com/mobilia/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const slowQueryThreshold = 200 * time.Millisecond

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	meter := meterProvider.Meter("github.com/mobilia/backend")

	log.Info("Starting fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("telemetry", tracerProvider.IsEnabled()),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: slowQueryThreshold,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if _, err := telemetry.RegisterDBPoolMetrics(meter, db.SQL()); err != nil {
		log.Warn("Database pool metrics unavailable", zap.Error(err))
	}
	log.Info("Database connected")

	// Idempotency store and record locker, Redis-backed when configured
	coordination, err := cache.NewCoordinationFactory(cfg.Redis, cfg.Fulfillment,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to initialize coordination", zap.Error(err))
	}
	defer func() {
		if err := coordination.Close(); err != nil {
			log.Error("Error closing coordination", zap.Error(err))
		}
	}()

	// Domain events
	bus := event.NewInMemoryEventBus(log)
	var forwarder *event.KafkaForwarder
	if cfg.Kafka.Enabled {
		forwarder = event.NewKafkaForwarder(event.NewKafkaWriter(cfg.Kafka), log)
		bus.Subscribe(event.NewIdempotentHandler(forwarder, coordination.Idempotency, cfg.Fulfillment.IdempotencyTTL, log))
		log.Info("Forwarding domain events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	stockLedger := persistence.NewGormStockLedger(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	numbering := persistence.NewGormNumberingService(db.DB)
	invoices := persistence.NewGormInvoiceGenerator(db.DB, numbering)
	roles := persistence.NewGormRoleProvider(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Services
	fulfillmentMetrics, err := telemetry.NewFulfillmentMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register fulfillment metrics", zap.Error(err))
	}

	inventoryService := appinv.NewInventoryService(scope.Inventory(), stockLedger, locationRepo, log)
	inventoryService.SetEventPublisher(bus)

	orderService := apptrade.NewOrderService(scope, orderRepo, paymentRepo, numbering, invoices, locationRepo, inventoryService, log)
	orderService.SetEventPublisher(bus)
	orderService.SetRecordLocker(coordination.Locker)
	orderService.SetMetrics(fulfillmentMetrics)
	if cfg.Fulfillment.IdempotencyEnabled {
		orderService.SetIdempotencyStore(coordination.Idempotency, cfg.Fulfillment.IdempotencyTTL)
	}

	purchaseOrderService := apptrade.NewPurchaseOrderService(scope, purchaseOrderRepo, numbering, locationRepo, log)
	purchaseOrderService.SetEventPublisher(bus)
	purchaseOrderService.SetRecordLocker(coordination.Locker)
	purchaseOrderService.SetMetrics(fulfillmentMetrics)

	// HTTP
	system := handler.NewSystemHandler(version).AddCheck("database", db.Ping)
	if client := coordination.Client; client != nil {
		system.AddCheck("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		JWT:            auth.NewJWTService(cfg.JWT),
		Roles:          roles,
		Meter:          meter,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Orders:         orderService,
		PurchaseOrders: purchaseOrderService,
		Stock:          inventoryService,
		System:         system,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drain in dependency order: stop producing events, flush the forwarder,
	// then the exporters
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stop failed", zap.Error(err))
	}
	if forwarder != nil {
		if err := forwarder.Close(); err != nil {
			log.Warn("Kafka forwarder close failed", zap.Error(err))
		}
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
