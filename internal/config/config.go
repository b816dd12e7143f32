package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`

	DBHost     string `validate:"required"`
	DBPort     string `validate:"required,numeric"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBSSLMode  string `validate:"oneof=disable require verify-ca verify-full"`

	DBMaxOpenConns    int           `validate:"min=1"`
	DBMaxIdleConns    int           `validate:"min=0"`
	DBConnMaxIdleTime time.Duration `validate:"min=0"`
	DBRetryAttempts   int           `validate:"min=1,max=10"`
	DBRetryBackoff    time.Duration `validate:"min=0"`

	SessionSecret string        `validate:"omitempty,min=16"`
	SessionCookie string        `validate:"required"`
	SessionTTL    time.Duration `validate:"min=1m"`

	RedisAddr string `validate:"required"`

	MailFrom      string `validate:"omitempty,email"`
	MailTransport string `validate:"oneof=log ses"`
	PortalURL     string `validate:"omitempty,url"`

	RequestsPerMinute int64         `validate:"min=1"`
	DocumentCacheTTL  time.Duration `validate:"min=0"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Addr:     getEnv("ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "clientportal"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 60*time.Second),
		DBRetryAttempts:   getEnvInt("DB_RETRY_ATTEMPTS", 3),
		DBRetryBackoff:    getEnvDuration("DB_RETRY_BACKOFF", 200*time.Millisecond),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionCookie: getEnv("SESSION_COOKIE", "portal_session"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		MailFrom:      os.Getenv("MAIL_FROM"),
		MailTransport: getEnv("MAIL_TRANSPORT", "log"),
		PortalURL:     os.Getenv("PORTAL_URL"),

		RequestsPerMinute: int64(getEnvInt("REQUESTS_PER_MINUTE", 120)),
		DocumentCacheTTL:  getEnvDuration("DOCUMENT_CACHE_TTL", 30*time.Second),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DatabaseURL is the URL form used by golang-migrate.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// DSN is the keyword/value form used by lib/pq.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// SlogLevel maps LOG_LEVEL onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
