package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/quickbite/internal/backend"
	"github.com/joho/godotenv"
)

var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")

type Config struct {
	Port      string
	WebDir    string
	Endpoints backend.Endpoints

	BackendTimeout time.Duration

	SessionSecret       string
	SessionTTL          time.Duration
	SessionIdleTTL      time.Duration
	SessionCookieSecure bool
	DemoUserID          int

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	DatabaseURL           string
	JournalResyncInterval time.Duration
	KafkaBrokers          []string
	KafkaTopic            string
	KafkaConsumerGroup    string
}

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using process environment")
	} else {
		log.Println("[Config] Loaded .env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	apiBase := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/")

	cfg := &Config{
		Port:   getEnv("PORT", "3205"),
		WebDir: os.Getenv("WEB_DIR"),
		Endpoints: backend.Endpoints{
			Users:         getEnv("USERS_SERVICE_URL", apiBase+"/api/users"),
			Restaurants:   getEnv("RESTAURANTS_SERVICE_URL", "http://localhost:8081/api/restaurants"),
			Orders:        getEnv("ORDERS_SERVICE_URL", "http://localhost:8082/api/orders"),
			Payments:      getEnv("PAYMENTS_SERVICE_URL", "http://localhost:8083/api/payments"),
			Deliveries:    getEnv("DELIVERIES_SERVICE_URL", "http://localhost:8084/api/deliveries"),
			Notifications: getEnv("NOTIFICATIONS_SERVICE_URL", "http://localhost:8085/api/notifications"),
		},
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "quickbite-checkout"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "quickbite-journal"),
	}

	var err error
	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.JournalResyncInterval, err = getDuration("JOURNAL_RESYNC_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.DemoUserID, err = getInt("DEMO_USER_ID", 1); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = getBool("SESSION_COOKIE_SECURE", false); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" {
		return nil, ErrMissingSessionSecret
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
