package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/config"
	httpDelivery "github.com/discovery-engine/internal/delivery/http"
	"github.com/discovery-engine/internal/delivery/http/handler"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/geo"
	"github.com/discovery-engine/internal/pkg/logger"
	"github.com/discovery-engine/internal/repository/cache"
	"github.com/discovery-engine/internal/repository/memory"
	"github.com/discovery-engine/internal/repository/postgres"
	redisRepo "github.com/discovery-engine/internal/repository/redis"
	"github.com/discovery-engine/internal/tracker"
	"github.com/discovery-engine/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Discovery Engine API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("redis_addr", cfg.GetRedisAddr()),
		zap.String("entity_source", cfg.Entities.Source),
	)

	// 3. Connect to Redis (response cache, and entity source when selected)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	// 4. Select the entity source
	var entitySource repository.EntitySource
	switch cfg.Entities.Source {
	case "memory":
		entitySource, err = memory.NewEntityRepositoryFromFile(cfg.Entities.File)
		if err != nil {
			log.Fatal("Failed to load entity file",
				zap.String("file", cfg.Entities.File),
				zap.Error(err))
		}
	case "redis":
		entitySource = redisRepo.NewEntityRepository(redisClient.Client(), log)
	case "postgres":
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		if err := db.Health(ctx); err != nil {
			log.Fatal("PostgreSQL health check failed", zap.Error(err))
		}
		entitySource = postgres.NewEntityRepository(db, log)
	default:
		log.Fatal("Unknown entity source", zap.String("source", cfg.Entities.Source))
	}

	cacheRepo := cache.NewCacheRepository(redisClient)

	log.Info("Repositories initialized")

	// 5. Initialize use cases
	rankUC := usecase.NewRankUseCase(log)
	viewportUC := usecase.NewViewportUseCase(log)
	qualityUC := usecase.NewQualityUseCase(nil, log)

	clusterCfg := usecase.DefaultClusterConfig()
	if cfg.Engine.ClusterRadiusPx > 0 {
		clusterCfg.DefaultRadiusPx = cfg.Engine.ClusterRadiusPx
	}
	if cfg.Engine.FullSeparationZoom > 0 {
		clusterCfg.FullSeparationZoom = cfg.Engine.FullSeparationZoom
	}
	clusterUC := usecase.NewClusterUseCase(clusterCfg, geo.NewWebMercator(), log)

	trackerCfg := tracker.Config{
		DiscoveryRadiusKm: cfg.Engine.DiscoveryRadiusKm,
		HistoryLimit:      cfg.Engine.HistoryLimit,
		PredictionHorizon: cfg.Engine.PredictionHorizon,
	}

	// 6. Initialize handlers
	mapHandler := handler.NewMapHandler(
		entitySource, viewportUC, clusterUC, qualityUC,
		cacheRepo, cfg.Cache.ClustersCacheTTL, log,
	)
	entityHandler := handler.NewEntityHandler(entitySource, rankUC, qualityUC, log)
	trackHandler := handler.NewTrackHandler(entitySource, trackerCfg, rankUC, log)

	// 7. Start HTTP server
	server := httpDelivery.NewServer(cfg, log, mapHandler, entityHandler, trackHandler)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 8. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", zap.Error(err))
	}

	log.Info("API shutdown complete")
}
