// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/ledger"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DefaultVendorAddress is used when VENDOR_ADDRESS is unset.
const DefaultVendorAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

// Config holds all service configuration.
type Config struct {
	// Server
	HTTPAddr        string        `validate:"required"`
	MetricsAddr     string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Storage
	StorageBackend string `validate:"oneof=memory postgres"`
	StreakBackend  string `validate:"oneof=memory postgres redis"`
	StreakKey      string `validate:"required"`
	PostgresDSN    string
	ClickHouseDSN  string
	Migrate        bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Vendor
	VendorAddress string `validate:"required"`
	VendorName    string `validate:"required"`
	TokenPriceUSD string `validate:"numeric"`

	// HTTP limits
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gt=0"`
	MaxProofBytes  int     `validate:"gt=0"`

	// Logging
	LogLevel  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `validate:"oneof=text json"`
}

// Load reads envFiles (missing files are ignored) and then the environment.
// Variables already set in the environment take precedence over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		// Server
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":9090"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// Storage
		StorageBackend: getEnv("STORAGE_BACKEND", BackendMemory),
		StreakBackend:  getEnv("STREAK_BACKEND", BackendMemory),
		StreakKey:      getEnv("STREAK_KEY", "vendorStreak"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		ClickHouseDSN:  getEnv("CLICKHOUSE_DSN", ""),
		Migrate:        getEnvAsBool("MIGRATE", false),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Kafka
		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil, ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "vendor-actions"),

		// Vendor
		VendorAddress: getEnv("VENDOR_ADDRESS", DefaultVendorAddress),
		VendorName:    getEnv("VENDOR_NAME", "You"),
		TokenPriceUSD: getEnv("TOKEN_PRICE_USD", "1.2"),

		// HTTP limits
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		MaxProofBytes:  getEnvAsInt("MAX_PROOF_BYTES", 5<<20),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if (c.StorageBackend == BackendPostgres || c.StreakBackend == BackendPostgres) && c.PostgresDSN == "" {
		return errors.New("invalid config: POSTGRES_DSN is required for the postgres backend")
	}
	if c.StreakBackend == BackendRedis && c.RedisAddr == "" {
		return errors.New("invalid config: REDIS_ADDR is required for the redis streak backend")
	}
	if err := ledger.ValidateAddress(c.VendorAddress); err != nil {
		return fmt.Errorf("invalid config: VENDOR_ADDRESS: %w", err)
	}
	return nil
}

// TokenPrice returns TokenPriceUSD as a decimal.
func (c *Config) TokenPrice() decimal.Decimal {
	p, err := decimal.NewFromString(c.TokenPriceUSD)
	if err != nil {
		return ledger.DefaultPrice
	}
	return p
}

// NewLogger builds a logger with the configured level and format.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string, sep string) []string {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultVal
	}
	parts := strings.Split(valStr, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
