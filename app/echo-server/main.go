package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appmetrics "quixellMarket/app/echo-server/metrics"
	"quixellMarket/app/echo-server/router"
	"quixellMarket/business/demographics"
	"quixellMarket/business/discovery"
	"quixellMarket/business/pricing"
	"quixellMarket/business/product"
	"quixellMarket/business/promotion"
	"quixellMarket/business/recommendation"
	"quixellMarket/business/sales"
	"quixellMarket/business/tracking"
	"quixellMarket/internal/middleware"
	"quixellMarket/internal/repository/forecast"
	"quixellMarket/internal/repository/notification"
	psqlRepo "quixellMarket/internal/repository/postgres"
	redisRepo "quixellMarket/internal/repository/redis"
	"quixellMarket/internal/rest"
	"quixellMarket/pkg/async"
	"quixellMarket/pkg/config"
	"quixellMarket/pkg/database"
	redisClient "quixellMarket/pkg/database/redis"
	"quixellMarket/pkg/logger"
	"quixellMarket/pkg/metrics"
	"quixellMarket/pkg/retry"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Quixell Market", "version", cfg.App.Version)

	metrics.Init()
	appmetrics.Init(cfg.App.Version, cfg.App.Environment)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}
	}

	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb, err = redisClient.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		logger.Info("Redis connected successfully")
	}

	// Init notification from mailjet
	mailjet := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
			AlertRecipientEmail:      cfg.Mailjet.AlertRecipientEmail,
			AlertRecipientName:       cfg.Mailjet.AlertRecipientName,
		},
	)
	if !mailjet.Enabled() {
		logger.Warn("Mailjet not configured, alerts are disabled")
	}

	// Load model artifacts
	hybridModel, err := recommendation.NewModelHolder(cfg.Models.HybridModelPath)
	if err != nil {
		logger.Fatal("Failed to load hybrid model", "path", cfg.Models.HybridModelPath, "error", err)
	}
	priceModel, err := pricing.LoadLinearModel(cfg.Models.PriceModelPath)
	if err != nil {
		logger.Fatal("Failed to load price model", "path", cfg.Models.PriceModelPath, "error", err)
	}
	promotionModel, err := promotion.LoadLogisticModel(cfg.Models.PromotionModelPath)
	if err != nil {
		logger.Fatal("Failed to load promotion model", "path", cfg.Models.PromotionModelPath, "error", err)
	}

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	userRepo := psqlRepo.NewUserRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	salesRepo := psqlRepo.NewSalesRepository(db)
	forecastAuditRepo := psqlRepo.NewForecastAuditRepository(db)
	inventoryRepo := psqlRepo.NewInventoryRepository(db)
	preferenceRepo := psqlRepo.NewPreferenceRepository(db)

	forecastClient := forecast.NewClient(forecast.Config{
		URL:              cfg.Forecast.URL,
		APIUser:          cfg.Forecast.APIUser,
		APIKey:           cfg.Forecast.APIKey,
		Timeout:          cfg.Forecast.Timeout,
		MaxRetries:       cfg.Forecast.MaxRetries,
		BreakerTimeout:   cfg.Forecast.BreakerTimeout,
		BreakerMinCalls:  cfg.Forecast.BreakerMinCalls,
		BreakerFailRatio: cfg.Forecast.BreakerFailRatio,
	}, mailjet)

	// nil interfaces when redis is off
	var forecastCache sales.ForecastCache
	var forecastInvalidator rest.ForecastInvalidator
	if rdb != nil {
		c := redisRepo.NewForecastCache(rdb)
		forecastCache = c
		forecastInvalidator = c
	}

	runner := async.NewRunner(cfg.Tracking.MaxConcurrentWrites, cfg.Tracking.WriteTimeout, tracking.OnWriteFailure,
		async.WithRetry(retry.Policy{
			MaxRetries:  cfg.Tracking.WriteRetries,
			BaseBackoff: cfg.Tracking.WriteBackoff,
			MaxBackoff:  cfg.Tracking.WriteTimeout / 2,
		}),
	)

	snapshots := recommendation.NewSnapshotStore(userRepo, productRepo, eventRepo, cfg.Recommendation.SnapshotMaxAge)

	var refresher *cron.Cron
	if cfg.Recommendation.SnapshotRefreshSpec != "" {
		refresher, err = snapshots.StartRefresher(cfg.Recommendation.SnapshotRefreshSpec, time.Minute)
		if err != nil {
			logger.Fatal("Failed to schedule snapshot refresh", "error", err)
		}
	}

	// Init service
	ranker := recommendation.NewRanker(snapshots, hybridModel, userRepo, productRepo, mailjet, recommendation.Config{
		WarmTopN:     cfg.Recommendation.WarmTopN,
		ColdTopM:     cfg.Recommendation.ColdTopM,
		DefaultCount: cfg.Recommendation.DefaultCount,
	})
	productService := product.NewProductService(productRepo)
	pricingService := pricing.NewPricingService(priceModel, productRepo)
	promotionService := promotion.NewPromotionService(promotionModel, inventoryRepo)
	salesService := sales.NewSalesService(salesRepo, forecastClient, forecastCache, forecastAuditRepo, cfg.Forecast.CacheTTL)
	trackingService := tracking.NewTrackingService(eventRepo, runner)
	demographicsService := demographics.NewDemographicsService(userRepo)
	discoveryService := discovery.NewDiscoveryService(preferenceRepo, productRepo)

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(ranker)
	productHandler := rest.NewProductHandler(productService)
	pricingHandler := rest.NewPricingHandler(pricingService)
	promotionHandler := rest.NewPromotionHandler(promotionService)
	salesHandler := rest.NewSalesHandler(salesService)
	trackingHandler := rest.NewTrackingHandler(trackingService)
	demographicsHandler := rest.NewDemographicsHandler(demographicsService)
	discoveryHandler := rest.NewDiscoveryHandler(discoveryService)
	adminHandler := rest.NewAdminHandler(snapshots, hybridModel, forecastInvalidator)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	trackingLimit := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.Tracking.RateLimitPerSecond),
			Burst:     rateLimitBurst(cfg.Tracking.RateLimitPerSecond),
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
	})

	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": cfg.App.Version})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupProductRoutes(api, productHandler)
	router.SetupPricingRoutes(api, pricingHandler)
	router.SetupPromotionRoutes(api, promotionHandler)
	router.SetupSalesRoutes(api, salesHandler)
	router.SetupTrackingRoutes(api, trackingHandler, trackingLimit)
	router.SetupDemographicsRoutes(api, demographicsHandler)
	router.SetupDiscoveryRoutes(api, discoveryHandler)
	router.SetupAdminRoutes(api, adminHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if refresher != nil {
		<-refresher.Stop().Done()
	}

	if err := runner.Shutdown(ctx); err != nil {
		logger.Error("Background writes did not drain", "error", err)
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	if err := database.ClosePostgres(db); err != nil {
		logger.Error("Database close error", "error", err)
	}

	logger.Info("Server stopped")
}

// rateLimitBurst allows two seconds worth of requests at once, never less
// than one request.
func rateLimitBurst(perSecond float64) int {
	return max(1, int(math.Ceil(perSecond*2)))
}
