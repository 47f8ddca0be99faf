package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/rental_checkout/internal/platform/database"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	// PublicBaseURL is where the processor sends the buyer back to.
	PublicBaseURL string

	DB database.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartCacheTTL  time.Duration

	PayPalBaseURL      string
	PayPalClientID     string
	PayPalClientSecret string
	Currency           string

	ReconcileTimeout time.Duration
	// SnapshotTTL of zero keeps checkout snapshots until they are ended.
	SnapshotTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the optional .env file at path into the process environment and
// builds the Config from it.
func Load(path string) (*Config, error) {
	loadEnv(path)

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		DB: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "rental_checkout"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		RedisAddr:     fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		Currency:           getEnv("PAYMENT_CURRENCY", "USD"),

		KafkaTopic: getEnv("KAFKA_TOPIC", "bookings.confirmed"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.CartCacheTTL, err = time.ParseDuration(getEnv("CART_CACHE_TTL", "15m")); err != nil {
		return nil, fmt.Errorf("invalid CART_CACHE_TTL: %w", err)
	}
	if cfg.ReconcileTimeout, err = time.ParseDuration(getEnv("RECONCILE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_TIMEOUT: %w", err)
	}
	if cfg.SnapshotTTL, err = time.ParseDuration(getEnv("SNAPSHOT_TTL", "0s")); err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TTL: %w", err)
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadEnv sets KEY=VALUE pairs from the file. Variables already present in
// the environment win.
func loadEnv(path string) {
	err := godotenv.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("path", path).Msg("no .env file, using process environment")
	default:
		log.Warn().Err(err).Str("path", path).Msg("failed to read .env file")
	}
}
