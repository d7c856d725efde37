package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/wbpos/backend/internal/application/catalog"
	trackingapp "github.com/wbpos/backend/internal/application/tracking"
	"github.com/wbpos/backend/internal/infrastructure/blobstore"
	"github.com/wbpos/backend/internal/infrastructure/cache"
	"github.com/wbpos/backend/internal/infrastructure/config"
	"github.com/wbpos/backend/internal/infrastructure/ecommerce"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/persistence"
	"github.com/wbpos/backend/internal/infrastructure/ranking"
	"github.com/wbpos/backend/internal/infrastructure/telemetry"
	"github.com/wbpos/backend/internal/interfaces/http/handler"
	"github.com/wbpos/backend/internal/interfaces/http/middleware"
	"github.com/wbpos/backend/internal/interfaces/http/router"

	_ "github.com/wbpos/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			WB Position Tracker API
//	@version		1.0
//	@description	Tracks the search positions of one Wildberries product for a set of keywords.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry: every provider is a no-op when disabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		if log, err = logger.New(logCfg, otelCore); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WB Position Tracker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		BasicAuthUser:     cfg.Profiler.BasicAuthUser,
		BasicAuthPassword: cfg.Profiler.BasicAuthPassword,
		ProfileTypes:      cfg.Profiler.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	trackerMetrics, err := telemetry.NewTrackerMetrics(meterProvider.Meter("wbpos"))
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	// Config blob store
	store, err := blobstore.NewFactory(cfg,
		blobstore.WithLogger(log),
		blobstore.WithDBTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem(cfg.Database.Driver),
		}, log)),
	).Open(ctx)
	if err != nil {
		log.Fatal("Failed to open config store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing config store", zap.Error(err))
		}
	}()

	// Catalog snapshot cache
	catalogCache, closeCache, err := cache.NewCatalogCacheFactory(cfg.Catalog, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create catalog cache", zap.Error(err))
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Error("Error closing catalog cache", zap.Error(err))
		}
	}()

	// Upstreams
	wb, err := ecommerce.NewWildberriesAdapter(&ecommerce.WildberriesConfig{
		APIBaseURL:     cfg.Wildberries.APIBaseURL,
		TimeoutSeconds: cfg.Wildberries.TimeoutSeconds,
		PageLimit:      cfg.Wildberries.PageLimit,
	})
	if err != nil {
		log.Fatal("Failed to configure Wildberries adapter", zap.Error(err))
	}
	sampler, err := ranking.NewSampler(cfg.Ranking, log)
	if err != nil {
		log.Fatal("Failed to configure rank sampler", zap.Error(err))
	}

	// Application services
	catalogService := catalogapp.NewService(wb,
		catalogapp.WithCache(catalogCache, cfg.Catalog.CacheTTL),
		catalogapp.WithMaxPages(cfg.Catalog.MaxPages),
		catalogapp.WithMetrics(trackerMetrics),
		catalogapp.WithLogger(log),
	)
	repo := persistence.NewBlobConfigRepository(store, blobstore.StorageKey(cfg))
	trackingService := trackingapp.NewService(repo, sampler,
		trackingapp.WithLabeler(catalogService),
		trackingapp.WithWindowDays(cfg.Ranking.WindowDays),
		trackingapp.WithTopN(cfg.Ranking.TopN),
		trackingapp.WithMetrics(trackerMetrics),
		trackingapp.WithLogger(log),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// request id, tracing, recovery, logging, metrics, profiling labels,
	// security headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
		SkipPaths:   []string{"/health"},
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
	}))
	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingConfig))
	engine.Use(middleware.SecureWithConfig(securityConfig(cfg)))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{"store": store}, 2*time.Second)
	engine.GET("/health", healthHandler.Health)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version,
		handler.WithRuntimeInfo(store.Backend, cfg.Ranking.Provider, cfg.Ranking.WindowDays),
		handler.WithCheckStatus(trackingService.IsCheckRunning),
	)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	routes := r.RegisterAPI(router.Handlers{
		Catalog:   handler.NewCatalogHandler(catalogService),
		Tracking:  handler.NewTrackingHandler(trackingService),
		Positions: handler.NewPositionsHandler(sampler, cfg.Ranking.WindowDays),
		System:    systemHandler,
	})
	r.Setup()
	for _, rt := range routes {
		log.Debug("Route registered", zap.String("group", rt.Group), zap.String("method", rt.Method), zap.String("path", rt.Path))
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
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("store", store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	sc := middleware.DefaultSecurityConfig()
	sc.HSTSEnabled = cfg.App.IsProduction()
	return sc
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
