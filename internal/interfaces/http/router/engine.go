package router

import (
	"fmt"

	"github.com/farmerp/backend/internal/infrastructure/config"
	"github.com/farmerp/backend/internal/infrastructure/logger"
	"github.com/farmerp/backend/internal/interfaces/http/handler"
	"github.com/farmerp/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Probe paths, served outside the API group and without authentication
const (
	HealthPath = "/health"
	ReadyPath  = "/ready"
)

// EngineConfig holds what the engine needs besides the handlers
type EngineConfig struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig

	Verifier middleware.TokenVerifier
	Logger   *zap.Logger

	// Optional instrumentation
	Tracing   bool
	Meter     metric.Meter
	Profiling bool
}

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	Orders   *handler.PurchaseOrderHandler
	Expenses *handler.ExpenseHandler
	Health   *handler.HealthHandler
}

// NewEngine builds the gin engine with the full middleware stack
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(logger.Recovery(log), middleware.RequestID())
	if cfg.Tracing {
		engine.Use(middleware.Tracing(cfg.ServiceName))
	}
	engine.Use(
		logger.GinMiddleware(log, HealthPath, ReadyPath),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, fmt.Errorf("http metrics: %w", err)
		}
		engine.Use(metrics)
	}
	if cfg.Profiling {
		engine.Use(middleware.Profiling(HealthPath, ReadyPath, "/swagger/"))
	}

	engine.GET(HealthPath, h.Health.Live)
	engine.GET(ReadyPath, h.Health.Ready)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	apiMiddleware := []gin.HandlerFunc{
		middleware.JWTAuth(middleware.JWTConfig{Verifier: cfg.Verifier, Logger: log}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
	}

	NewRouter(engine, WithAPIMiddleware(apiMiddleware...)).
		Register(ProcurementRoutes(h.Orders, h.Expenses)).
		Register(FinanceRoutes(h.Expenses)).
		Setup()

	engine.NoRoute(middleware.NoRoute())
	return engine, nil
}
