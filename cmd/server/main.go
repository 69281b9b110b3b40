package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/brandlens/backend/internal/application/billing"
	appbrand "github.com/brandlens/backend/internal/application/brand"
	appidentity "github.com/brandlens/backend/internal/application/identity"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/infrastructure/ai"
	"github.com/brandlens/backend/internal/infrastructure/auth"
	infrabilling "github.com/brandlens/backend/internal/infrastructure/billing"
	"github.com/brandlens/backend/internal/infrastructure/cache"
	"github.com/brandlens/backend/internal/infrastructure/config"
	"github.com/brandlens/backend/internal/infrastructure/logger"
	"github.com/brandlens/backend/internal/infrastructure/persistence"
	"github.com/brandlens/backend/internal/infrastructure/scrape"
	"github.com/brandlens/backend/internal/infrastructure/storage"
	"github.com/brandlens/backend/internal/infrastructure/telemetry"
	"github.com/brandlens/backend/internal/interfaces/http/handler"
	"github.com/brandlens/backend/internal/interfaces/http/middleware"
	"github.com/brandlens/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting brandlens backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	usageEventRepo := persistence.NewGormUsageEventRepository(db.DB)
	analysisRepo := persistence.NewGormAnalysisRepository(db.DB)

	// Idempotency store: Redis, falling back to in-memory when Redis is down
	// (degrades dedup, not availability)
	var idempotencyStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisStore
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Billing provider client. Under the dev bypass the provider is never
	// called, so placeholder credentials keep the client constructible.
	billingCfg := &infrabilling.Config{
		BaseURL:   cfg.Billing.BaseURL,
		SecretKey: cfg.Billing.SecretKey,
		Timeout:   cfg.Billing.Timeout,
	}
	if cfg.Billing.DevBypass {
		if billingCfg.BaseURL == "" {
			billingCfg.BaseURL = "http://localhost:0"
		}
		if billingCfg.SecretKey == "" {
			billingCfg.SecretKey = "dev-bypass"
		}
	}
	billingProvider, err := infrabilling.NewClient(billingCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize billing provider client", zap.Error(err))
	}
	if cfg.Billing.DevBypass {
		log.Warn("Billing dev bypass is ACTIVE: credit checks always pass and usage is not tracked")
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	creditService := appbilling.NewCreditService(billingProvider, usageEventRepo, idempotencyStore, log,
		appbilling.CreditServiceConfig{DevBypass: cfg.Billing.DevBypass})
	subscriptionService := appbilling.NewSubscriptionService(userRepo, billingProvider, log, cfg.Billing.ProProductID)
	usageService := appbilling.NewUsageService(usageEventRepo, log)

	scraper, cleanupScraper, err := buildScraper(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize scraper", zap.Error(err))
	}
	defer cleanupScraper()

	providers := buildAIProviders(context.Background(), cfg, log)
	if len(providers) == 0 {
		log.Warn("No AI providers configured; analyses will fail until one is set up")
	}

	analysisService := appbrand.NewAnalysisService(analysisRepo, scraper, providers, creditService, log,
		appbrand.AnalysisServiceConfig{ProviderTimeout: cfg.AI.Timeout})

	reportStorage, err := buildReportStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize report storage", zap.Error(err))
	}
	reportService := appbrand.NewReportService(analysisRepo, reportStorage, creditService, log)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/ready",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: log,
	}))

	r := router.NewRouter(engine, "v1")
	r.Register(
		handler.NewSystemHandler(db, version),
		handler.NewAuthHandler(authService),
		handler.NewCreditsHandler(creditService),
		handler.NewSubscriptionHandler(subscriptionService),
		handler.NewUsageHandler(usageService),
		handler.NewAnalysisHandler(analysisService, reportService),
	)
	r.Setup()

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildScraper selects the scraping engine from config
func buildScraper(cfg *config.Config, log *zap.Logger) (scrape.Scraper, func(), error) {
	switch cfg.Scraper.Engine {
	case "chromedp":
		chrome, err := scrape.NewChromeScraper(&scrape.ChromeConfig{
			Timeout:   cfg.Scraper.Timeout,
			NoSandbox: true,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return chrome, func() { _ = chrome.Close() }, nil
	default:
		return scrape.NewHTTPScraper(cfg.Scraper.Timeout, log), func() {}, nil
	}
}

// buildAIProviders constructs every AI provider that has an API key configured
func buildAIProviders(ctx context.Context, cfg *config.Config, log *zap.Logger) []ai.Provider {
	var providers []ai.Provider

	if cfg.AI.OpenAIAPIKey != "" {
		openai, err := ai.NewOpenAIProvider(ai.OpenAIConfig{
			APIKey:  cfg.AI.OpenAIAPIKey,
			BaseURL: cfg.AI.OpenAIBaseURL,
			Model:   cfg.AI.OpenAIModel,
			Timeout: cfg.AI.Timeout,
		}, log)
		if err != nil {
			log.Error("Failed to initialize OpenAI provider", zap.Error(err))
		} else {
			providers = append(providers, openai)
		}
	}

	if cfg.AI.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, ai.GeminiConfig{
			APIKey: cfg.AI.GeminiAPIKey,
			Model:  cfg.AI.GeminiModel,
		}, log)
		if err != nil {
			log.Error("Failed to initialize Gemini provider", zap.Error(err))
		} else {
			providers = append(providers, gemini)
		}
	}

	return providers
}

// buildReportStorage selects the report storage backend from config
func buildReportStorage(cfg *config.Config, log *zap.Logger) (storage.ReportStorage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3ReportStorage(&cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Store, nil
	default:
		return storage.NewLocalReportStorage(cfg.Storage.LocalPath)
	}
}
