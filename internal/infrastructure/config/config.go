package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	OAuth2  OAuth2Config
	Audit   AuditConfig
}

// MongoConfig.Transactions needs a replica set; turn it off for a standalone server.
type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=identity"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=true"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,           default=8h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=true"`
}

// OAuth2Config lists the provider registrations accepted at login.
// ClientSecrets maps registration id to the HMAC secret its assertions are
// signed with, e.g. "google:s3cret,github:an0ther".
type OAuth2Config struct {
	Issuer        string            `env:"OAUTH2_ISSUER"`
	ClientSecrets map[string]string `env:"OAUTH2_CLIENT_SECRETS"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsProduction reports whether pretty logging and insecure cookies must be off.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(log zerolog.Logger) *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		panic(err)
	}
	return cfg
}

// LoadWith resolves configuration through lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
