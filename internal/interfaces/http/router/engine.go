package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/infrastructure/auth"
	"github.com/mobilia/backend/internal/infrastructure/logger"
	"github.com/mobilia/backend/internal/interfaces/http/handler"
	"github.com/mobilia/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries everything the HTTP engine is assembled from
type EngineConfig struct {
	Logger         *zap.Logger
	JWT            *auth.JWTService
	Roles          identity.RoleProvider
	Meter          metric.Meter
	ServiceName    string
	TracingEnabled bool
	TrustedProxies []string

	Orders         handler.OrderUseCases
	PurchaseOrders handler.PurchaseOrderUseCases
	Stock          handler.StockUseCases
	System         *handler.SystemHandler
}

// NewEngine builds the gin engine: request id, tracing, access log, recovery
// and metrics on every route; authentication and workspace resolution on
// the versioned API.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		logger.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.HTTPMetrics(cfg.Meter),
	)

	system := cfg.System
	if system == nil {
		system = handler.NewSystemHandler("dev")
	}
	engine.GET("/health", system.Health)

	r := NewRouter(engine, WithMiddleware(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{JWTService: cfg.JWT, Logger: log}),
		middleware.CapabilityMiddleware(cfg.Roles, log),
		middleware.SpanEnricher(),
	))
	r.Register(handler.NewOrderHandler(cfg.Orders)).
		Register(handler.NewPurchaseOrderHandler(cfg.PurchaseOrders)).
		Register(handler.NewStockHandler(cfg.Stock))
	r.Setup()

	return engine, nil
}
