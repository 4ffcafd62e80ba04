package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Transport
	HTTPAddr           string
	CORSAllowedOrigins []string
	MCPAddr            string
	MCPAuthToken       string

	// Scoring
	MaxBatchSize   int
	DefaultDueDays int

	// History
	HistoryEnabled bool
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Redis result cache
	RedisURL string
	CacheTTL time.Duration

	// RabbitMQ
	RabbitMQURL string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr:           getEnv("HTTP_ADDR", "0.0.0.0:8000"),
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MCPAddr:            getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken:       getEnv("MCP_AUTH_TOKEN", ""),

		MaxBatchSize:   getIntEnv("MAX_BATCH_SIZE", 1000),
		DefaultDueDays: getIntEnv("DEFAULT_DUE_DAYS", 7),

		HistoryEnabled: getBoolEnv("HISTORY_ENABLED", true),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", defaultSQLitePath()),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("CACHE_TTL", 10*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
	}

	// Local mode is on whenever no server database is configured.
	cfg.LocalMode = cfg.DatabaseURL == ""
	if cfg.LocalMode {
		cfg.DatabaseDriver = "sqlite"
	} else {
		cfg.DatabaseDriver = "postgres"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskrank/history.db"
	}
	return home + "/.taskrank/history.db"
}
