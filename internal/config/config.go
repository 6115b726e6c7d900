package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Entities EntitiesConfig
	Engine   EngineConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	ClustersCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

// EntitiesConfig selects the entity source: "memory" (JSON file), "redis"
// (pipeline hash layout), or "postgres".
type EntitiesConfig struct {
	Source string
	File   string
}

// EngineConfig carries the engine tunables. They become explicit
// construction parameters; nothing inside the engine reads the environment.
type EngineConfig struct {
	DiscoveryRadiusKm  float64
	HistoryLimit       int
	PredictionHorizon  time.Duration
	FullSeparationZoom float64
	ClusterRadiusPx    float64
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			ClustersCacheTTL: time.Duration(viper.GetInt("CLUSTERS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Entities: EntitiesConfig{
			Source: viper.GetString("ENTITY_SOURCE"),
			File:   viper.GetString("ENTITY_FILE"),
		},
		Engine: EngineConfig{
			DiscoveryRadiusKm:  viper.GetFloat64("ENGINE_DISCOVERY_RADIUS_KM"),
			HistoryLimit:       viper.GetInt("ENGINE_HISTORY_LIMIT"),
			PredictionHorizon:  time.Duration(viper.GetInt("ENGINE_PREDICTION_HORIZON")) * time.Second,
			FullSeparationZoom: viper.GetFloat64("ENGINE_FULL_SEPARATION_ZOOM"),
			ClusterRadiusPx:    viper.GetFloat64("ENGINE_CLUSTER_RADIUS_PX"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
		},
	}

	// Set default values if not provided
	if cfg.Entities.Source == "" {
		cfg.Entities.Source = "memory"
	}
	if cfg.Cache.ClustersCacheTTL == 0 {
		cfg.Cache.ClustersCacheTTL = 30 * time.Second
	}
	if cfg.Engine.DiscoveryRadiusKm == 0 {
		cfg.Engine.DiscoveryRadiusKm = 2.0
	}
	if cfg.Engine.HistoryLimit == 0 {
		cfg.Engine.HistoryLimit = 50
	}
	if cfg.Engine.PredictionHorizon == 0 {
		cfg.Engine.PredictionHorizon = 5 * time.Minute
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "discovery-workers"
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
