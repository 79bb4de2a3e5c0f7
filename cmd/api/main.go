package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/config"
	"github.com/address-normalizer/app/controllers"
	"github.com/address-normalizer/app/services"
	"github.com/address-normalizer/internal/geocode"
	"github.com/address-normalizer/internal/normalize"
	"github.com/address-normalizer/internal/search"
	"github.com/address-normalizer/routes"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting Address Normalizer Service")

	if err := config.Load(viper.GetString("normalizer.config_path")); err != nil {
		logger.Warn("normalizer config file not loaded, using defaults", zap.Error(err))
		config.LoadDefaults()
	}

	// Replacement tables: embedded defaults plus any override document
	// found under ADDRESS_TABLES_DIR.
	tables, err := normalize.LoadFromEnv()
	if err != nil {
		logger.Fatal("loading replacement tables failed", zap.Error(err))
	}

	mongoClient, database := initMongoDB(logger)
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("disconnecting from MongoDB failed", zap.Error(err))
		}
	}()

	cacheService := initCache(database, logger)
	defer cacheService.Close()

	addressIndex := initSearchIndex(logger)
	geocoder := initGeocoder(logger)

	addressService := services.NewAddressService(tables, geocoder, addressIndex, logger)
	adminService := services.NewAdminService(addressService, addressIndex, cacheService, logger)

	addressController := controllers.NewAddressController(addressService, cacheService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	port := viper.GetString("app.port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}

// loadConfig reads the service config file and environment.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("normalizer.config_path", "config/normalizer.yaml")
	viper.SetDefault("meilisearch.enabled", false)
	viper.SetDefault("meilisearch.url", "http://localhost:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "addresses")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "address_normalizer")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("cache.l1_size", 10000)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}
}

func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	return logger
}

func initMongoDB(logger *zap.Logger) (*mongo.Client, *mongo.Database) {
	mongoURL := viper.GetString("mongo.url")
	logger.Info("connecting to MongoDB", zap.String("url", mongoURL))

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("connecting to MongoDB failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("pinging MongoDB failed", zap.Error(err))
	}

	return client, client.Database(viper.GetString("mongo.database"))
}

// initCache builds the cache stack: Mongo with an in-process LRU,
// fronted by Redis when enabled.
func initCache(database *mongo.Database, logger *zap.Logger) services.ICacheService {
	mongoCache, err := services.NewMongoCacheService(database, viper.GetInt("cache.l1_size"), logger)
	if err != nil {
		logger.Fatal("creating mongo cache failed", zap.Error(err))
	}
	mongoCache.SetTTLHours(config.C.Cache.TTLHours)

	if !viper.GetBool("redis.enabled") {
		return mongoCache
	}

	redisCache, err := services.NewRedisCacheService(viper.GetString("redis.url"), logger)
	if err != nil {
		logger.Warn("Redis unavailable, running on mongo cache only", zap.Error(err))
		return mongoCache
	}
	return services.NewHybridCacheService(redisCache, mongoCache, logger)
}

func initSearchIndex(logger *zap.Logger) *search.AddressIndex {
	if !viper.GetBool("meilisearch.enabled") {
		logger.Info("search index disabled")
		return nil
	}

	index, err := search.NewAddressIndex(search.Config{
		Host:      viper.GetString("meilisearch.url"),
		APIKey:    viper.GetString("meilisearch.master_key"),
		IndexName: viper.GetString("meilisearch.index"),
		Timeout:   5 * time.Second,
	}, logger)
	if err != nil {
		logger.Warn("Meilisearch unavailable, similarity search disabled", zap.Error(err))
		return nil
	}

	if err := index.EnsureSettings(); err != nil {
		logger.Warn("submitting index settings failed", zap.Error(err))
	}
	return index
}

func initGeocoder(logger *zap.Logger) *geocode.Client {
	client, err := geocode.NewFromEnv(logger)
	if err != nil {
		logger.Info("geocoder disabled", zap.Error(err))
		return nil
	}
	logger.Info("geocoder enabled")
	return client
}
