// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration. Optional backends (Redis,
// Postgres, Kafka) degrade to in-memory equivalents when their address is
// left empty.
type Config struct {
	Addr     string `env:"ENROLL_ADDR" envDefault:":8080"`
	LogLevel string `env:"ENROLL_LOG_LEVEL" envDefault:"info"`

	AccountServiceURL string        `env:"ENROLL_ACCOUNT_SERVICE_URL,required"`
	RemoteTimeout     time.Duration `env:"ENROLL_REMOTE_TIMEOUT" envDefault:"20s"`

	RedirectDelay  time.Duration `env:"ENROLL_REDIRECT_DELAY" envDefault:"1500ms"`
	ResendCooldown time.Duration `env:"ENROLL_RESEND_COOLDOWN" envDefault:"60s"`

	JWTSigningKey string `env:"ENROLL_JWT_SIGNING_KEY,required"`

	RedisAddr     string        `env:"ENROLL_REDIS_ADDR"`
	RedisPassword string        `env:"ENROLL_REDIS_PASSWORD"`
	DraftTTL      time.Duration `env:"ENROLL_DRAFT_TTL" envDefault:"24h"`

	AuditPostgresDSN  string   `env:"ENROLL_AUDIT_POSTGRES_DSN"`
	AuditKafkaBrokers []string `env:"ENROLL_AUDIT_KAFKA_BROKERS"`
	AuditKafkaTopic   string   `env:"ENROLL_AUDIT_KAFKA_TOPIC" envDefault:"onboarding.audit"`

	ShutdownTimeout time.Duration `env:"ENROLL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
