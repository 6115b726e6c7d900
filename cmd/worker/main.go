package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/config"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/logger"
	"github.com/discovery-engine/internal/repository/cache"
	"github.com/discovery-engine/internal/repository/memory"
	"github.com/discovery-engine/internal/repository/postgres"
	redisRepo "github.com/discovery-engine/internal/repository/redis"
	"github.com/discovery-engine/internal/tracker"
	"github.com/discovery-engine/internal/worker"
	"github.com/discovery-engine/internal/worker/tracking"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Discovery Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.String("entity_source", cfg.Entities.Source),
		zap.Float64("discovery_radius_km", cfg.Engine.DiscoveryRadiusKm))

	// 3. Connect to Redis (position and discovery streams)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

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
		entitySource = postgres.NewEntityRepository(db, log)
	default:
		log.Fatal("Unknown entity source", zap.String("source", cfg.Entities.Source))
	}

	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	trackerCfg := tracker.Config{
		DiscoveryRadiusKm: cfg.Engine.DiscoveryRadiusKm,
		HistoryLimit:      cfg.Engine.HistoryLimit,
		PredictionHorizon: cfg.Engine.PredictionHorizon,
	}

	// 5. Initialize workers
	discoveryWorker := tracking.NewDiscoveryWorker(
		streamRepo,
		entitySource,
		trackerCfg,
		cfg.Worker.ConsumerGroup,
		log,
	)

	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(discoveryWorker)

	// 6. Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
