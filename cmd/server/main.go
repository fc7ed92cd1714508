package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	procurementapp "github.com/farmerp/backend/internal/application/procurement"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/farmerp/backend/internal/infrastructure/auth"
	"github.com/farmerp/backend/internal/infrastructure/cache"
	"github.com/farmerp/backend/internal/infrastructure/config"
	"github.com/farmerp/backend/internal/infrastructure/event"
	"github.com/farmerp/backend/internal/infrastructure/logger"
	"github.com/farmerp/backend/internal/infrastructure/persistence"
	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"github.com/farmerp/backend/internal/interfaces/http/handler"
	"github.com/farmerp/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/farmerp/backend/docs"
)

//go:generate swag init -g cmd/server/main.go -o docs --v3.1 -d ../../

//	@title			Farm ERP API
//	@version		1.0
//	@description	Purchase order lifecycle, payment schedules and expense reconciliation for farm ERP

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Farm ERP backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("status_scheme", cfg.Procurement.StatusScheme),
		zap.String("sequence_backend", cfg.Procurement.SequenceBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerURL,
		ApplicationName:   serviceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingAuthPass,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(serviceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		tracing := telemetry.DefaultDBTracingConfig()
		tracing.Enabled = true
		tracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			tracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		if err := db.Use(telemetry.NewDBTracingPlugin(tracing, log)); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Repositories
	baseCurrency, err := valueobject.ParseCurrency(cfg.Procurement.DefaultBaseCurrency)
	if err != nil {
		log.Fatal("Invalid default base currency", zap.Error(err))
	}
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	firms := persistence.NewGormFirmDirectory(db.DB, baseCurrency)
	dbSequence := persistence.NewGormOrderNumberGenerator(db.DB)

	var numbers procurement.OrderNumberGenerator = dbSequence
	if cfg.Procurement.SequenceBackend == config.SequenceBackendRedis {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		numbers = cache.NewRedisOrderNumberGenerator(redisClient, "", dbSequence)
		log.Info("Order numbers allocated from redis")
	}

	// Application services
	scheme, err := procurement.LookupScheme(procurement.SchemeName(cfg.Procurement.StatusScheme))
	if err != nil {
		log.Fatal("Invalid status scheme", zap.Error(err))
	}
	metrics, err := telemetry.NewProcurementMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create procurement metrics", zap.Error(err))
	}

	orderService := procurementapp.NewPurchaseOrderService(orderRepo, expenseRepo, numbers, firms, procurementapp.ServiceConfig{
		Scheme:            scheme,
		ReconcileOn:       procurementapp.ReconcileTrigger(cfg.Procurement.ReconcileOn),
		OrderNumberPrefix: cfg.Procurement.OrderNumberPrefix,
	}, log)
	orderService.SetMetrics(metrics)
	orderService.SetTransactionManager(persistence.NewGormTransactionManager(db.DB))
	expenseService := procurementapp.NewExpenseService(orderRepo, expenseRepo, log)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(procurementapp.NewEventLogger(log, metrics))
	orderService.SetEventPublisher(eventBus)
	expenseService.SetEventPublisher(eventBus)

	// HTTP
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName: serviceName,
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger,
		Verifier:    auth.NewTokenVerifier(cfg.JWT),
		Logger:      log,
		Tracing:     cfg.Telemetry.Enabled,
		Meter:       meter,
		Profiling:   cfg.Telemetry.ProfilingEnabled,
	}, router.Handlers{
		Orders:   handler.NewPurchaseOrderHandler(orderService),
		Expenses: handler.NewExpenseHandler(expenseService),
		Health:   handler.NewHealthHandler(db),
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

	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not drain", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler stop failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
