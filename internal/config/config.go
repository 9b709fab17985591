package config

import (
	"fmt"
	"strings"
	"time"

	sharedauth "github.com/railmiles/rewards-service/internal/shared/auth"
	"github.com/railmiles/rewards-service/internal/shared/envconfig"
)

// Config encapsulates the runtime configuration for the rewards service.
type Config struct {
	Port         string `validate:"required,numeric"`
	LogLevel     string `validate:"omitempty,oneof=debug info warn warning error"`
	GCPProjectID string
	DataStore    DataStore `validate:"required"`
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Postgres     PostgresConfig
	NATS         NATSConfig
	Metrics      MetricsConfig
	Timezone     string `validate:"required"`

	// Location is resolved from Timezone during Load.
	Location *time.Location `validate:"-"`
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps riders in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores riders in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
	// DataStorePostgres stores riders in PostgreSQL.
	DataStorePostgres DataStore = "postgres"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     sharedauth.Mode
	JWKSURL  string `validate:"omitempty,url"`
	Audience string
	Issuer   string
	// AuthorizedParties is parsed from the comma separated CLERK_AUTHORIZED_PARTIES.
	AuthorizedParties []string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	Database     string
	EmulatorHost string
}

// PostgresConfig holds the pgx connection string.
type PostgresConfig struct {
	URL string
}

// NATSConfig enables event publishing when URL is set.
type NATSConfig struct {
	URL string
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Load reads an optional .env file and the environment into Config with validation.
func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		LogLevel:     strings.ToLower(envconfig.Get("LOG_LEVEL", "info")),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Auth: AuthConfig{
			Mode:     sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),

			AuthorizedParties: splitList(envconfig.Get("CLERK_AUTHORIZED_PARTIES", "")),
		},
		Firestore: FirestoreConfig{
			Database:     envconfig.Get("FIRESTORE_DATABASE", ""),
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Postgres: PostgresConfig{
			URL: envconfig.Get("POSTGRES_URL", ""),
		},
		NATS: NATSConfig{
			URL: envconfig.Get("NATS_URL", ""),
		},
		Metrics: MetricsConfig{
			Enabled: envconfig.GetBool("METRICS_ENABLED", true),
		},
		Timezone: envconfig.Get("REWARDS_TIMEZONE", "Europe/London"),
	}

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	case DataStorePostgres:
		if strings.TrimSpace(cfg.Postgres.URL) == "" {
			return fmt.Errorf("POSTGRES_URL is required when datastore=postgres")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case sharedauth.ModeClerk:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
		}
	case sharedauth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid REWARDS_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
