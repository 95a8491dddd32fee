// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Port    string
	Storage string

	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	DefaultTimezone string
	Location        *time.Location

	RateLimit   int
	RateWindow  time.Duration
	KPICacheTTL time.Duration

	LogDebug bool
}

// Load reads the configuration. Only JWT_SECRET is mandatory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		Storage: getEnv("STORAGE", StoragePostgres),

		DBUser:     getEnv("DB_USER", "kanso_user"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "kanso_db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "kanso-streak-engine"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),

		RateLimit:   getEnvInt("RATE_LIMIT", 100),
		RateWindow:  getEnvDuration("RATE_WINDOW", time.Minute),
		KPICacheTTL: getEnvDuration("KPI_CACHE_TTL", 6*time.Hour),

		LogDebug: getEnvBool("LOG_DEBUG", false),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// RedisEnabled is false when REDIS_HOST is unset.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
