package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	reviewapp "github.com/marketplace/backend/internal/application/review"
	tradeapp "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/storage"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/marketplace/backend/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

//	@title			Marketplace Backend API
//	@version		1.0
//	@description	Marketplace backend: orders, deliveries, products, categories and reviews.

//	@contact.name	API Support
//	@contact.url	https://github.com/marketplace/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}". The "token" cookie is accepted as well.

const serviceVersion = "1.0.0"

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

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MeterConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics export", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meterProvider.Meter("marketplace-backend"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: !cfg.App.IsProduction(),
		DBName:     cfg.Database.DBName,
		Provider:   tracer.Provider(),
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}

	metrics := telemetry.NewMetrics()
	if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
		log.Warn("Database pool metrics not registered", zap.Error(err))
	}

	blacklist := newTokenBlacklist(ctx, cfg, log)
	defer func() {
		if err := blacklist.Close(); err != nil {
			log.Error("Error closing token blacklist", zap.Error(err))
		}
	}()

	images := newImageStorage(ctx, cfg, log)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	orderReportRepo := persistence.NewGormOrderReportRepository(db.DB, log, businessMetrics)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB, log, businessMetrics)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, businessMetrics, log)
	orderService := tradeapp.NewOrderService(orderRepo, orderReportRepo, productRepo, businessMetrics)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, images)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	reviewService := reviewapp.NewReviewService(reviewRepo)

	// Handlers
	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieSettings{
			Name:     cfg.Cookie.Name,
			Domain:   cfg.Cookie.Domain,
			Path:     cfg.Cookie.Path,
			Secure:   cfg.Cookie.Secure,
			MaxAge:   cfg.Cookie.MaxAge,
			SameSite: handler.ParseSameSite(cfg.Cookie.SameSite),
		}),
		Order:    handler.NewOrderHandler(orderService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Review:   handler.NewReviewHandler(reviewService),
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, sqlDB)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(cfg.Cookie.Secure),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Provider:    tracer.Provider(),
			Enabled:     tracer.IsEnabled(),
		}),
		middleware.SpanAttributes(),
	)
	if cfg.Metrics.Enabled {
		engine.Use(middleware.HTTPMetrics(metrics))
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
		log.Info("Prometheus metrics enabled", zap.String("path", cfg.Metrics.Path))
	}

	engine.GET("/health", systemHandler.Health)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	guards := router.Guards{
		Authenticate: middleware.JWTAuth(middleware.JWTConfig{
			Authenticator: authService,
			CookieName:    cfg.Cookie.Name,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer limiter.Close()
		guards.AuthRateLimit = middleware.RateLimit(limiter)
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	router.NewRouter(engine).
		Register(router.MarketplaceGroups(handlers, guards)...).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// newTokenBlacklist prefers Redis and falls back to memory when Redis is unset or unreachable
func newTokenBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	if cfg.Redis.Host == "" {
		log.Info("Redis not configured, using in-memory token blacklist")
		return auth.NewInMemoryTokenBlacklist(time.Minute)
	}

	blacklist, err := auth.NewRedisTokenBlacklist(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return auth.NewInMemoryTokenBlacklist(time.Minute)
	}
	log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	return blacklist
}

// newImageStorage returns nil when storage is disabled so image endpoints answer 503
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) catalogapp.ImageStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, product image uploads are unavailable")
		return nil
	}

	s3, err := storage.NewS3ImageStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Could not verify storage bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3
}
