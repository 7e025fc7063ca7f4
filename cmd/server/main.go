package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/surveypulse/backend/internal/api/handlers"
	"github.com/surveypulse/backend/internal/cache"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/countries"
	"github.com/surveypulse/backend/internal/geo"
	"github.com/surveypulse/backend/internal/loader"
	"github.com/surveypulse/backend/internal/middleware"
	"github.com/surveypulse/backend/internal/ngram"
	"github.com/surveypulse/backend/internal/store"
	"github.com/surveypulse/backend/internal/warehouse"
	"github.com/surveypulse/backend/pkg/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting survey pulse backend...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	campaigns, err := config.LoadCampaignConfigs(cfg.CampaignsConfigDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load campaign configurations")
	}
	logger.WithField("campaigns", len(campaigns)).Info("Campaign configurations loaded")

	countryRef, err := countries.Load(filepath.Join(cfg.DataDir, "countries.json"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load country reference data")
	}

	reader, err := warehouse.NewReader(cfg.Warehouse.URL, os.Getenv("LOG_LEVEL"), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to warehouse")
	}
	defer reader.Close()

	var responseCache cache.ResponseCache
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to redis")
		}
		responseCache = redisCache
	} else {
		logger.Info("Redis disabled, using in-memory response cache")
		responseCache = cache.NewMemoryCache()
	}

	coordsPath := filepath.Join(cfg.DataDir, "coordinates.json")
	coordCache := geo.NewCoordinateCache()
	if err := coordCache.LoadFile(coordsPath); err != nil {
		logger.WithError(err).Warn("Failed to load coordinate cache, starting empty")
	}

	stopwords, err := ngram.LoadStopwords(filepath.Join(cfg.DataDir, "stopwords.json"))
	if err != nil {
		logger.WithError(err).Warn("Failed to load stopwords, n-grams use campaign extras only")
	}

	translations := cache.NewTranslationsCache()
	if err := translations.LoadFile(filepath.Join(cfg.DataDir, "translations.json")); err != nil {
		logger.WithError(err).Warn("Failed to load translations, facet names stay untranslated")
	}

	var geoResolver *geo.Resolver
	if err := cfg.ValidateGeocoder(); err != nil {
		logger.WithError(err).Warn("Geocoder not configured, region coordinates will not be resolved")
	} else {
		geocoder := geo.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.APIKey, logger)
		geoResolver = geo.NewResolver(coordCache, geocoder, logger)
	}

	campaignStore := store.NewCampaignStore()
	dataLoader := loader.New(
		campaigns,
		reader,
		campaignStore,
		responseCache,
		countryRef,
		stopwords,
		geoResolver,
		coordsPath,
		cfg.IsDev(),
		logger,
	)

	// First load runs in the background so the health endpoint is reachable
	// while the warehouse is being read.
	go dataLoader.LoadAll(context.Background())

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Reload.Schedule, func() {
		dataLoader.LoadAll(context.Background())
	}); err != nil {
		logger.WithError(err).Fatal("Invalid reload schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.WithField("schedule", cfg.Reload.Schedule).Info("Reload scheduler started")

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(middleware.NewRateLimiter(120).RateLimit())

	campaignHandler := handlers.NewCampaignHandler(campaigns, campaignStore, responseCache, translations, dataLoader, logger)
	var redisPinger handlers.Pinger
	if redisCache != nil {
		redisPinger = redisCache
	}
	healthHandler := handlers.NewHealthHandler(reader, redisPinger, campaignStore, campaigns, dataLoader, logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.HandleHealth)
		v1.POST("/admin/reload", campaignHandler.HandleReload)

		campaignsGroup := v1.Group("/campaigns/:code")
		{
			campaignsGroup.GET("/filter-options", campaignHandler.HandleFilterOptions)
			campaignsGroup.GET("/ngrams", campaignHandler.HandleNgrams)
			campaignsGroup.GET("/responses-sample", campaignHandler.HandleResponsesSample)
		}
	}

	logger.WithField("port", cfg.Server.Port).Info("Server listening")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
