// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Environment string
	Timezone    string

	HTTP      HTTPConfig
	Database  DatabaseConfig
	Telemetry TelemetryConfig
	Alerts    AlertConfig
	Tracing   TracingConfig
}

type HTTPConfig struct {
	Addr            string
	RateLimit       int
	RateLimitWindow time.Duration
}

type DatabaseConfig struct {
	DSN string
}

// TelemetryConfig controls the external feed poller.
type TelemetryConfig struct {
	FeedURL      string
	FetchCount   int
	PollInterval time.Duration
	FetchTimeout time.Duration
}

// AlertConfig controls the alert evaluator loop.
type AlertConfig struct {
	CheckInterval time.Duration
	SMTPAddr      string
	SMTPFrom      string
}

type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Load reads configuration from the environment, loading a .env file when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Timezone:    getEnv("TIMEZONE", "Europe/Paris"),
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			RateLimit:       getEnvInt("HTTP_RATE_LIMIT", 60),
			RateLimitWindow: getEnvDuration("HTTP_RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_DSN", "statelec.db"),
		},
		Telemetry: TelemetryConfig{
			FeedURL:      getEnv("TELEMETRY_FEED_URL", ""),
			FetchCount:   getEnvInt("TELEMETRY_FETCH_COUNT", 20),
			PollInterval: getEnvDuration("TELEMETRY_POLL_INTERVAL", 5*time.Minute),
			FetchTimeout: getEnvDuration("TELEMETRY_FETCH_TIMEOUT", 30*time.Second),
		},
		Alerts: AlertConfig{
			CheckInterval: getEnvDuration("ALERT_CHECK_INTERVAL", time.Hour),
			SMTPAddr:      getEnv("ALERT_SMTP_ADDR", ""),
			SMTPFrom:      getEnv("ALERT_SMTP_FROM", "noreply@statelec.local"),
		},
		Tracing: TracingConfig{
			Enabled:          getEnvBool("TRACING_ENABLED", false),
			ExporterEndpoint: getEnv("TRACING_EXPORTER_ENDPOINT", ""),
			ExporterProtocol: getEnv("TRACING_EXPORTER_PROTOCOL", "grpc"),
			SamplingRatio:    getEnvFloat("TRACING_SAMPLING_RATIO", 0.1),
		},
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
