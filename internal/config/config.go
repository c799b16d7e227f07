package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port          string
	Mode          string
	PublicBaseURL string
	ServiceName   string

	// Database configuration
	DatabaseURL string
	SQLitePath  string

	// Redis configuration, empty disables distributed locking
	RedisURL string

	// Razorpay configuration
	RazorpayKeyID     string
	RazorpayKeySecret string
	OrderAmount       int64
	OrderCurrency     string

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	// Storage configuration
	UploadDir string

	// Timeouts
	GatewayTimeout time.Duration
	StoreTimeout   time.Duration

	// Rate limiting for /api routes
	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads the optional .env file and builds the configuration from the
// environment.
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	cfg := &Config{
		Port:              port,
		Mode:              getEnv("GIN_MODE", "debug"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		ServiceName:       getEnv("SERVICE_NAME", "App Builder"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "app-builder.db"),
		RedisURL:          getEnv("REDIS_URL", ""),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		OrderAmount:       int64(getEnvInt("ORDER_AMOUNT", 699900)),
		OrderCurrency:     getEnv("ORDER_CURRENCY", "INR"),
		BrevoAPIKey:       getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:    getEnv("BREVO_FROM_EMAIL", ""),
		BrevoFromName:     getEnv("BREVO_FROM_NAME", "App Builder"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		GatewayTimeout:    time.Duration(getEnvInt("GATEWAY_TIMEOUT", 15)) * time.Second,
		StoreTimeout:      time.Duration(getEnvInt("STORE_TIMEOUT", 10)) * time.Second,
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Mode != "debug" && c.RazorpayKeySecret == "" {
		return errors.New("RAZORPAY_KEY_SECRET is required outside debug mode")
	}
	if c.OrderAmount <= 0 {
		return errors.New("ORDER_AMOUNT must be positive")
	}
	if c.UploadDir == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
