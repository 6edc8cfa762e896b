package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName        string
	HTTPPort           string
	PostgresDSN        string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agora"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	interval := 2 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OUTBOX_POLL_INTERVAL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err == nil && parsed > 0 {
			interval = parsed
		}
	}

	return Config{
		ServiceName:        service,
		HTTPPort:           port,
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		OutboxPollInterval: interval,
		OutboxBatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		value = value*10 + int(r-'0')
	}
	if value <= 0 {
		return fallback
	}
	return value
}
