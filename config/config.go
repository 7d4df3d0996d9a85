package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRelaySecret signs outbound relay calls when EXTERNAL_WEBHOOK_SECRET
// is unset outside production. It is predictable and must not be relied on.
const DefaultRelaySecret = "default-secret"

const devAdminSecretKey = "admin-secret-key-dev-only"

type Config struct {
	Port        string
	Environment string

	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string

	ExternalWebhookURL    string
	ExternalWebhookSecret string
	RelaySecretDefaulted  bool
	RelayTimeout          time.Duration
	RelayMaxBytes         int64

	MaxEventAge    time.Duration
	ReplayCapacity int
	ReplayTTL      time.Duration
	RedisURL       string

	JWTSecret           string
	JWTExpiresIn        time.Duration
	JWTRefreshExpiresIn time.Duration
	AdminSecretKey      string
	UsersFile           string

	StaticDir       string
	CORSOrigin      string
	RateLimitWindow time.Duration
	RateLimitMax    int
	LogFile         string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads configuration from the environment, after loading an
// optional .env file from the working directory.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey:  os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ExternalWebhookURL:    strings.TrimSpace(os.Getenv("EXTERNAL_WEBHOOK_URL")),
		ExternalWebhookSecret: os.Getenv("EXTERNAL_WEBHOOK_SECRET"),
		RedisURL:              os.Getenv("REDIS_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		AdminSecretKey:        os.Getenv("ADMIN_SECRET_KEY"),
		UsersFile:             getEnv("USERS_FILE", "config/users.json"),
		StaticDir:             getEnv("STATIC_DIR", "../frontend/public"),
		CORSOrigin:            getEnv("CORS_ORIGIN", "*"),
		LogFile:               os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.MaxEventAge, err = getDuration("WEBHOOK_MAX_EVENT_AGE", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.RelayTimeout, err = getDuration("WEBHOOK_RELAY_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReplayTTL, err = getDuration("WEBHOOK_REPLAY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWTExpiresIn, err = getDuration("JWT_EXPIRES_IN", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWTRefreshExpiresIn, err = getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RelayMaxBytes, err = getInt64("WEBHOOK_RELAY_MAX_BYTES", 1<<20); err != nil {
		return nil, err
	}
	capacity, err := getInt64("WEBHOOK_REPLAY_CAPACITY", 1000)
	if err != nil {
		return nil, err
	}
	cfg.ReplayCapacity = int(capacity)
	rateMax, err := getInt64("RATE_LIMIT_MAX_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitMax = int(rateMax)

	if cfg.StripeSecretKey == "" || cfg.StripePublishableKey == "" {
		return nil, fmt.Errorf("missing required environment variables: STRIPE_SECRET_KEY, STRIPE_PUBLISHABLE_KEY")
	}
	if cfg.ReplayCapacity < 1 || cfg.RelayMaxBytes < 1 || cfg.RateLimitMax < 1 {
		return nil, fmt.Errorf("replay capacity, relay max bytes and rate limit must be positive")
	}

	if cfg.ExternalWebhookSecret == "" {
		if cfg.IsProduction() && cfg.ExternalWebhookURL != "" {
			return nil, fmt.Errorf("EXTERNAL_WEBHOOK_SECRET is required in production when EXTERNAL_WEBHOOK_URL is set")
		}
		cfg.ExternalWebhookSecret = DefaultRelaySecret
		cfg.RelaySecretDefaulted = true
	}

	if cfg.JWTSecret == "" {
		secret, err := randomHex(64)
		if err != nil {
			return nil, fmt.Errorf("generate JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
	}
	if cfg.AdminSecretKey == "" && !cfg.IsProduction() {
		cfg.AdminSecretKey = devAdminSecretKey
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getDuration accepts Go duration strings ("5s", "15m") or a plain number of seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
