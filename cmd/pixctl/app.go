package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"pixkeys/internal/pixkey"
	"pixkeys/internal/platform/config"
	"pixkeys/internal/platform/logger"
	pstrings "pixkeys/pkg/platform/strings"
	"pixkeys/pkg/requestcontext"
)

const actor = "pixctl"

var flagDatabaseDriver = &cli.StringFlag{
	Name:    "database-driver",
	Value:   "sqlite",
	Usage:   "Key store backend: memory, postgres, pgx or sqlite",
	EnvVars: []string{"DATABASE_DRIVER"},
}
var flagDatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Value:   "file:pixkeys.db",
	Usage:   "DSN of the key store",
	EnvVars: []string{"DATABASE_URL"},
}
var flagRedisURL = &cli.StringFlag{
	Name:    "redis-url",
	Usage:   "Redis URL of the key cache; empty disables it",
	EnvVars: []string{"REDIS_URL"},
}
var flagKafkaBrokers = &cli.StringSliceFlag{
	Name:    "kafka-brokers",
	Usage:   "Kafka seed brokers; empty disables lifecycle events",
	EnvVars: []string{"KAFKA_BROKERS"},
}
var flagKafkaTopic = &cli.StringFlag{
	Name:    "kafka-topic",
	Value:   "pix.keys.events",
	EnvVars: []string{"KAFKA_TOPIC"},
}
var flagLimit = &cli.IntFlag{
	Name:    "limit",
	Value:   5,
	Usage:   "Maximum keys per account",
	EnvVars: []string{"PIX_KEY_LIMIT"},
}
var flagLimitCountInactive = &cli.BoolFlag{
	Name:    "limit-count-inactive",
	Usage:   "Count deactivated keys towards the limit",
	EnvVars: []string{"PIX_KEY_LIMIT_COUNT_INACTIVE"},
}
var flagJWTSigningKey = &cli.StringFlag{
	Name:    "jwt-signing-key",
	EnvVars: []string{"JWT_SIGNING_KEY"},
}
var flagJWTIssuer = &cli.StringFlag{
	Name:    "jwt-issuer",
	Value:   "pixkeys",
	EnvVars: []string{"JWT_ISSUER"},
}
var flagLogLevel = &cli.StringFlag{
	Name:    "log-level",
	Value:   "warn",
	EnvVars: []string{"LOG_LEVEL"},
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pixctl",
		Usage: "operate a PIX key registry",
		Flags: []cli.Flag{
			flagDatabaseDriver,
			flagDatabaseURL,
			flagRedisURL,
			flagKafkaBrokers,
			flagKafkaTopic,
			flagLimit,
			flagLimitCountInactive,
			flagJWTSigningKey,
			flagJWTIssuer,
			flagLogLevel,
		},
		Commands: []*cli.Command{
			migrateCommand(),
			createCommand(),
			getCommand(),
			searchCommand(),
			amendCommand(),
			deactivateCommand(),
			purgeCommand(),
			tokenCommand(),
			eventsCommand(),
		},
	}
}

func configFromFlags(c *cli.Context) config.Config {
	return config.Config{
		Log: config.Log{Level: c.String(flagLogLevel.Name), Format: "text"},
		Database: config.Database{
			Driver: c.String(flagDatabaseDriver.Name),
			URL:    c.String(flagDatabaseURL.Name),
		},
		Redis: config.RedisConfig{
			URL:      c.String(flagRedisURL.Name),
			CacheTTL: 5 * time.Minute,
		},
		Kafka: config.Kafka{
			Brokers:           pstrings.DedupeAndTrim(c.StringSlice(flagKafkaBrokers.Name)),
			Topic:             c.String(flagKafkaTopic.Name),
			Partitions:        3,
			ReplicationFactor: 1,
			Buffer:            64,
		},
		Auth: config.Auth{
			JWTSigningKey: c.String(flagJWTSigningKey.Name),
			JWTIssuer:     c.String(flagJWTIssuer.Name),
			TokenTTL:      time.Hour,
		},
		Limit: config.Limit{
			Max:           c.Int(flagLimit.Name),
			CountInactive: c.Bool(flagLimitCountInactive.Name),
		},
	}
}

// withRegistry opens the registry for one command and closes it afterwards,
// which also flushes any queued lifecycle events.
func withRegistry(c *cli.Context, fn func(ctx context.Context, r *pixkey.Registry) error) error {
	cfg := configFromFlags(c)
	log := logger.NewTo(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)

	ctx := requestcontext.WithSubject(c.Context, actor)
	r, err := pixkey.Open(ctx, cfg, pixkey.WithLogger(log))
	if err != nil {
		return err
	}
	runErr := fn(ctx, r)
	if err := r.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
