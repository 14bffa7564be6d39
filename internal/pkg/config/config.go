package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// SessionConfig drives the session middleware: token signing, cookie flags
// and the route prefix tables used for access classification.
type SessionConfig struct {
	SecretKey      string
	TokenTTL       time.Duration
	CookieSecure   bool
	PrimaryAdminID string

	ProtectedPrefix  string
	AdminPrefix      string
	ExcludedPrefixes []string
	SignInPath       string
	LandingPath      string
}

type CacheConfig struct {
	ResponseTTL time.Duration
}

type StripeConfig struct {
	SecretKey string
}

type Config struct {
	Repositories RepositoriesConfig
	Session      SessionConfig
	Cache        CacheConfig
	Stripe       StripeConfig
	ServerPort   string
	MetricsAddr  string
	PprofAddr    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "tally"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Session: SessionConfig{
			SecretKey:      getEnvOrDefault("SESSION_SECRET", ""),
			TokenTTL:       getDurationOrDefault("SESSION_TTL", 24*time.Hour),
			CookieSecure:   getBoolOrDefault("SESSION_COOKIE_SECURE", true),
			PrimaryAdminID: getEnvOrDefault("SESSION_PRIMARY_ADMIN", ""),

			ProtectedPrefix:  getEnvOrDefault("ROUTE_PROTECTED_PREFIX", "/app"),
			AdminPrefix:      getEnvOrDefault("ROUTE_ADMIN_PREFIX", "/admin"),
			ExcludedPrefixes: getListOrDefault("ROUTE_EXCLUDED_PREFIXES", []string{"/api", "/assets", "/favicon.ico"}),
			SignInPath:       getEnvOrDefault("ROUTE_SIGNIN_PATH", "/sign-in"),
			LandingPath:      getEnvOrDefault("ROUTE_LANDING_PATH", "/app/dashboard"),
		},
		Cache: CacheConfig{
			ResponseTTL: getDurationOrDefault("CACHE_RESPONSE_TTL", 30*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey: getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		},
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8090"),
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9092"),
		PprofAddr:   getEnvOrDefault("PPROF_ADDR", ":6060"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Session.SecretKey == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
