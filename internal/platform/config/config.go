// Package config assembles runtime configuration from the environment so
// main stays lean. Every knob has a development default; production
// deployments override through SOULBOUND_* variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"soulbound/pkg/domain"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Auth     Auth
	Registry Registry
	Audit    Audit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Postgres configures the primary store. An empty DSN selects the
// in-memory stores.
type Postgres struct {
	DSN string
}

// Redis configures the issuance reservation store. An empty URL selects
// the in-process reservation.
type Redis struct {
	URL string
}

// Kafka configures the audit event pipeline. No brokers disables the
// outbox relay and consumer; events still persist to the audit store.
type Kafka struct {
	Brokers       []string
	ConsumerGroup string
}

// Auth configures bearer-token authentication for the signed endpoints.
type Auth struct {
	JWTSigningKey string
	TokenTTL      time.Duration
}

// Registry captures the registry's deployment-time identity: who
// administers it, who signs mints, and the metadata locator base.
type Registry struct {
	// Administrator is the initial administrator, seeded on first start.
	Administrator domain.Address

	// Authority overrides the mint-signing address. When zero, the
	// authority tracks the current administrator.
	Authority domain.Address

	// BaseLocator is the initial base locator string.
	BaseLocator string

	// SeedDeployerToken mints token 0 to the administrator on first start.
	SeedDeployerToken bool
}

// Audit configures the audit pipeline buffers and relay cadence.
type Audit struct {
	Buffer        int
	RelayInterval time.Duration
	RelayBatch    int
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            envOr("SOULBOUND_ADDR", ":8080"),
			LogLevel:        envOr("SOULBOUND_LOG_LEVEL", "info"),
			ShutdownTimeout: envDurationOr("SOULBOUND_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			DSN: os.Getenv("SOULBOUND_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL: os.Getenv("SOULBOUND_REDIS_URL"),
		},
		Kafka: Kafka{
			Brokers:       splitList(os.Getenv("SOULBOUND_KAFKA_BROKERS")),
			ConsumerGroup: envOr("SOULBOUND_KAFKA_GROUP", "soulbound-audit"),
		},
		Auth: Auth{
			JWTSigningKey: envOr("SOULBOUND_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:      envDurationOr("SOULBOUND_TOKEN_TTL", time.Hour),
		},
		Registry: Registry{
			BaseLocator:       os.Getenv("SOULBOUND_BASE_LOCATOR"),
			SeedDeployerToken: envOr("SOULBOUND_SEED_DEPLOYER_TOKEN", "true") == "true",
		},
		Audit: Audit{
			Buffer:        envIntOr("SOULBOUND_AUDIT_BUFFER", 256),
			RelayInterval: envDurationOr("SOULBOUND_AUDIT_RELAY_INTERVAL", time.Second),
			RelayBatch:    envIntOr("SOULBOUND_AUDIT_RELAY_BATCH", 100),
		},
	}

	admin := os.Getenv("SOULBOUND_ADMINISTRATOR")
	if admin == "" {
		return Config{}, fmt.Errorf("SOULBOUND_ADMINISTRATOR is required")
	}
	addr, err := domain.ParseAddress(admin)
	if err != nil {
		return Config{}, fmt.Errorf("SOULBOUND_ADMINISTRATOR: %w", err)
	}
	cfg.Registry.Administrator = addr

	if authority := os.Getenv("SOULBOUND_AUTHORITY"); authority != "" {
		addr, err := domain.ParseAddress(authority)
		if err != nil {
			return Config{}, fmt.Errorf("SOULBOUND_AUTHORITY: %w", err)
		}
		cfg.Registry.Authority = addr
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
