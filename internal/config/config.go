package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Backend     BackendConfig
	Storage     StorageConfig
	DeviceID    string
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type BackendConfig struct {
	URL        string
	Timeout    time.Duration
	CatalogTTL time.Duration
}

type StorageConfig struct {
	Driver        string
	SQLitePath    string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_DRIVER", StorageSQLite)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("BACKEND_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	catalogTTL, err := time.ParseDuration(getEnvOrViper("CATALOG_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TTL: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Backend: BackendConfig{
			URL:        getEnvOrViper("BACKEND_URL", ""),
			Timeout:    timeout,
			CatalogTTL: catalogTTL,
		},
		Storage: StorageConfig{
			Driver:        getEnvOrViper("STORAGE_DRIVER", StorageSQLite),
			SQLitePath:    getEnvOrViper("SQLITE_PATH", "storefront.db"),
			RedisURL:      getEnvOrViper("REDIS_URL", ""),
			RedisAddr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvOrViper("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		DeviceID: getEnvOrViper("DEVICE_ID", ""),
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	switch cfg.Storage.Driver {
	case StorageMemory, StorageSQLite, StorageRedis, StoragePostgres:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
