package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "pixkeys/pkg/platform/strings"
)

// Config aggregates every setting the server and CLI read from the environment.
type Config struct {
	Server   Server
	Log      Log
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Auth     Auth
	Limit    Limit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Database selects the key store. Driver "memory" needs no DSN.
type Database struct {
	Driver string
	URL    string
}

// RedisConfig configures the read-through cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// Kafka configures lifecycle event publishing. No brokers disables it.
type Kafka struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
	Buffer            int
}

// Auth configures bearer tokens on mutating routes. An empty signing key
// leaves the routes open.
type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
}

// Limit is the per-account key cap.
type Limit struct {
	Max           int
	CountInactive bool
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            envOr("PIX_ADDR", ":8080"),
			ShutdownTimeout: 15 * time.Second,
		},
		Log: Log{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Database: Database{
			Driver: envOr("DATABASE_DRIVER", "memory"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers:           pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:             envOr("KAFKA_TOPIC", "pix.keys.events"),
			Partitions:        3,
			ReplicationFactor: 1,
			Buffer:            1024,
		},
		Auth: Auth{
			JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
			JWTIssuer:     envOr("JWT_ISSUER", "pixkeys"),
			TokenTTL:      time.Hour,
		},
	}

	var err error
	if cfg.Redis.CacheTTL, err = durationEnv("REDIS_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.Limit.Max, err = intEnv("PIX_KEY_LIMIT", 5); err != nil {
		return Config{}, err
	}
	if cfg.Limit.Max <= 0 {
		return Config{}, fmt.Errorf("PIX_KEY_LIMIT must be positive, got %d", cfg.Limit.Max)
	}
	if cfg.Limit.CountInactive, err = boolEnv("PIX_KEY_LIMIT_COUNT_INACTIVE", false); err != nil {
		return Config{}, err
	}

	switch cfg.Database.Driver {
	case "memory":
	case "postgres", "pgx", "sqlite":
		if cfg.Database.URL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for driver %q", cfg.Database.Driver)
		}
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
