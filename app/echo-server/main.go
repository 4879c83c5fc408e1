package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recoEngine/app/echo-server/router"
	"recoEngine/business/bandit"
	"recoEngine/business/category"
	"recoEngine/business/copywriter"
	"recoEngine/business/embedding"
	"recoEngine/business/event"
	"recoEngine/business/product"
	"recoEngine/business/ranking"
	"recoEngine/business/recommendation"
	"recoEngine/business/resultcache"
	"recoEngine/business/strategy"
	"recoEngine/internal/middleware"
	"recoEngine/internal/repository/copygen"
	"recoEngine/internal/repository/memory"
	psqlRepo "recoEngine/internal/repository/postgres"
	redisRepo "recoEngine/internal/repository/redis"
	"recoEngine/internal/rest"
	"recoEngine/pkg/config"
	"recoEngine/pkg/database"
	redisdb "recoEngine/pkg/database/redis"
	"recoEngine/pkg/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting recommendation engine", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Init cache backend
	backend, closeCache := initCacheBackend(cfg)
	defer closeCache()
	cache := resultcache.New(backend, cfg.Recommendation.CacheOpTimeout)

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	banditRepo := psqlRepo.NewBanditRepository(db)
	experimentRepo := psqlRepo.NewExperimentRepository(db)
	contentRepo := psqlRepo.NewGeneratedContentRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)

	// Init ranking
	embedder, err := embedding.NewHashingProvider(cfg.Recommendation.EmbeddingDimension)
	if err != nil {
		logger.Fatal("Failed to init embedding provider", "error", err)
	}

	rankCfg := ranking.DefaultConfig()
	rankCfg.Weights = ranking.Weights{
		Popularity: cfg.Recommendation.WeightPopularity,
		Relevance:  cfg.Recommendation.WeightRelevance,
		Recency:    cfg.Recommendation.WeightRecency,
		Diversity:  cfg.Recommendation.WeightDiversity,
	}
	rankCfg.DefaultLimit = cfg.Recommendation.Limit

	ranker, err := ranking.NewEngine(rankCfg, productRepo, embedder)
	if err != nil {
		logger.Fatal("Failed to init ranking engine", "error", err)
	}

	registry, err := strategy.Defaults(productRepo)
	if err != nil {
		logger.Fatal("Failed to register strategies", "error", err)
	}

	// Init bandit
	policy, err := bandit.NewPolicy(bandit.Config{Epsilon: cfg.Recommendation.Epsilon}, banditRepo)
	if err != nil {
		logger.Fatal("Failed to init bandit policy", "error", err)
	}
	variants := bandit.NewVariantPolicy(policy, experimentRepo)

	copyGen := copywriter.NewStoredGenerator(contentRepo, initCopyGenerator(cfg))

	// Init service
	recoService := recommendation.NewService(
		recommendation.Config{
			Limit:             cfg.Recommendation.Limit,
			FetchTimeout:      cfg.Recommendation.FetchTimeout,
			EnrichTimeout:     cfg.Recommendation.EnrichTimeout,
			EnrichConcurrency: cfg.Recommendation.EnrichConcurrency,
			ComputeTimeout:    cfg.Recommendation.ComputeTimeout,
		},
		policy,
		registry,
		ranker,
		copyGen,
		cache,
		banditRepo,
	)
	productService := product.NewProductService(productRepo, cache)
	eventService := event.NewEventService(eventRepo)
	categoryService := category.NewCategoryService(categoryRepo, cache)

	// Init handler
	recoHandler := rest.NewRecommendationHandler(recoService)
	productHandler := rest.NewProductHandler(productService)
	eventHandler := rest.NewEventHandler(eventService)
	experimentHandler := rest.NewExperimentHandler(variants)
	categoryHandler := rest.NewCategoryHandler(categoryService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID, middleware.HeaderAPIKey},
	}))

	// API key middleware guards the write routes
	apiKey := middleware.APIKeyMiddleware(cfg.App.APIKey)

	// Setup routes
	router.SetOpsRoutes(e)
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recoHandler, apiKey)
	router.SetupProductRoutes(api, productHandler)
	router.SetupCategoryRoutes(api, categoryHandler)
	router.SetEventRoutes(api, eventHandler, apiKey)
	router.SetExperimentRoutes(api, experimentHandler, apiKey)

	logger.Info("Recommendation engine ready",
		"strategies", registry.Names(),
		"epsilon", policy.Epsilon(),
		"cache_backend", cfg.Recommendation.CacheBackend,
	)

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

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}

// initCacheBackend returns the configured backend and its close func.
// A redis backend that cannot be reached degrades to the in-process cache.
func initCacheBackend(cfg *config.Config) (resultcache.Backend, func()) {
	noop := func() {}

	switch cfg.Recommendation.CacheBackend {
	case config.CacheBackendNone:
		logger.Info("Result cache disabled")
		return nil, noop

	case config.CacheBackendRedis:
		client, err := redisdb.NewRedisClient(cfg)
		if err == nil {
			logger.Info("Redis connected successfully")
			return redisRepo.NewCacheRepository(client, cfg.Redis.KeyPrefix), func() {
				_ = redisdb.CloseRedisClient(client)
			}
		}
		logger.Warn("Redis unavailable, falling back to memory cache", "error", err)
	}

	mem := memory.NewCache(cfg.Recommendation.MemoryCacheSize, time.Minute)
	return mem, mem.Close
}

// initCopyGenerator picks the remote copy service behind a breaker when
// configured, the offline template otherwise.
func initCopyGenerator(cfg *config.Config) copywriter.Generator {
	if cfg.CopyService.BaseURL == "" {
		return copywriter.NewTemplateGenerator()
	}

	client := copygen.NewClient(copygen.Config{
		BaseURL: cfg.CopyService.BaseURL,
		APIKey:  cfg.CopyService.APIKey,
		Timeout: cfg.CopyService.Timeout,
	})

	breakerCfg := copywriter.DefaultBreakerConfig()
	breakerCfg.RatePerSecond = cfg.CopyService.RatePerSecond
	breakerCfg.Burst = cfg.CopyService.Burst

	return copywriter.NewBreakerGenerator(client, breakerCfg)
}
