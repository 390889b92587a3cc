package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	// API Configuration
	APIPort            string
	APIHost            string
	CORSAllowedOrigins []string

	// E-commerce platform
	EcomAPIURL         string
	EcomStorageURL     string
	EcomRequestsPerSec float64

	// Feed import defaults
	DefaultQuantity         int
	UpdateProduct           bool
	BackorderStoreIDs       []int64
	BackorderProductionDays int

	// Taxonomy create-then-relookup
	TaxonomyMaxAttempts int
	TaxonomyRetryDelay  time.Duration

	// Notifications
	NotificationDelay time.Duration

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:             getEnv("DATABASE_URL", "sqlite://feedsync.db"),
		KafkaBrokers:            getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:              getEnv("KAFKA_TOPIC", "feed-sync-events"),
		KafkaGroupID:            getEnv("KAFKA_GROUP_ID", "feedsync-worker"),
		APIPort:                 getEnv("API_PORT", "8080"),
		APIHost:                 getEnv("API_HOST", "0.0.0.0"),
		CORSAllowedOrigins:      getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		EcomAPIURL:              getEnv("ECOM_API_URL", "https://api.e-com.plus/v1"),
		EcomStorageURL:          getEnv("ECOM_STORAGE_URL", "https://apx-storage.e-com.plus"),
		EcomRequestsPerSec:      getEnvAsFloat("ECOM_REQUESTS_PER_SECOND", 2),
		DefaultQuantity:         getEnvAsInt("DEFAULT_QUANTITY", 9999),
		UpdateProduct:           getEnvAsBool("UPDATE_PRODUCT", false),
		BackorderStoreIDs:       getEnvAsInt64List("BACKORDER_STORE_IDS"),
		BackorderProductionDays: getEnvAsInt("BACKORDER_PRODUCTION_DAYS", 10),
		TaxonomyMaxAttempts:     getEnvAsInt("TAXONOMY_MAX_ATTEMPTS", 4),
		TaxonomyRetryDelay:      getEnvAsDuration("TAXONOMY_RETRY_DELAY", 250*time.Millisecond),
		NotificationDelay:       getEnvAsDuration("NOTIFICATION_DELAY", 500*time.Millisecond),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}, nil
}

// BackorderEnabled reports whether zero or negative feed availability should
// be imported as a backorder for the given store.
func (c *Config) BackorderEnabled(storeID int64) bool {
	for _, id := range c.BackorderStoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsInt64List(key string) []int64 {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func getEnvAsList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
