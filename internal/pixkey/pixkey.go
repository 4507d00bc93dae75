// Package pixkey assembles the key registry from configuration: the record
// store, the optional Redis cache and Kafka event stream, and the engine and
// resolver on top of them. Both cmd/server and cmd/pixctl build through it.
package pixkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	"pixkeys/internal/pixkey/cache"
	"pixkeys/internal/pixkey/events"
	pixmetrics "pixkeys/internal/pixkey/metrics"
	"pixkeys/internal/pixkey/models"
	"pixkeys/internal/pixkey/service"
	"pixkeys/internal/pixkey/store"
	"pixkeys/internal/platform/config"
	"pixkeys/internal/platform/database"
	platformredis "pixkeys/internal/platform/redis"
)

// DriverMemory keeps keys in process; nothing survives a restart.
const DriverMemory = "memory"

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// Registry is a fully wired key registry.
type Registry struct {
	Engine   *service.Engine
	Resolver *service.Resolver
	Store    service.Store
	Metrics  *pixmetrics.Metrics
	// Checks probes the external dependencies in use, keyed by name.
	Checks map[string]func(ctx context.Context) error

	closers []func() error
}

// Option adjusts how Open wires the registry.
type Option func(*openConfig)

type openConfig struct {
	logger    *slog.Logger
	registry  prometheus.Registerer
	publisher service.Publisher
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *openConfig) {
		c.logger = logger
	}
}

// WithRegisterer registers the domain metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *openConfig) {
		c.registry = reg
	}
}

// WithPublisher overrides the Kafka publisher built from configuration.
func WithPublisher(p service.Publisher) Option {
	return func(c *openConfig) {
		c.publisher = p
	}
}

// Open builds the registry described by cfg. The caller must Close it.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (_ *Registry, err error) {
	oc := &openConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(oc)
	}

	r := &Registry{Checks: map[string]func(ctx context.Context) error{}}
	defer func() {
		if err != nil {
			_ = r.Close()
		}
	}()
	if oc.registry != nil {
		r.Metrics = pixmetrics.New(oc.registry)
	}

	r.Store, err = r.openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	svcOpts := []service.Option{
		service.WithLogger(oc.logger),
		service.WithMetrics(r.Metrics),
		service.WithLimitPolicy(models.LimitPolicy{Max: cfg.Limit.Max, CountInactive: cfg.Limit.CountInactive}),
	}

	keyCache, err := r.openCache(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if keyCache != nil {
		svcOpts = append(svcOpts, service.WithCache(keyCache))
	}

	publisher := oc.publisher
	if publisher == nil {
		publisher, err = r.openPublisher(ctx, cfg.Kafka, oc.logger)
		if err != nil {
			return nil, err
		}
	}
	if publisher != nil {
		svcOpts = append(svcOpts, service.WithPublisher(publisher))
	}

	if r.Engine, err = service.NewEngine(r.Store, svcOpts...); err != nil {
		return nil, err
	}
	if r.Resolver, err = service.NewResolver(r.Store, svcOpts...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) openStore(ctx context.Context, cfg config.Database) (service.Store, error) {
	if cfg.Driver == "" || cfg.Driver == DriverMemory {
		return store.NewInMemory(), nil
	}
	dialect, err := database.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Driver, cfg.URL)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, db.Close)
	r.Checks["database"] = db.PingContext
	if err := database.Migrate(ctx, db, cfg.Driver); err != nil {
		return nil, err
	}
	return store.NewSQL(db, dialect), nil
}

func (r *Registry) openCache(ctx context.Context, cfg config.RedisConfig) (service.Cache, error) {
	client, err := platformredis.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}
	r.closers = append(r.closers, client.Close)
	r.Checks["redis"] = client.Health
	return cache.NewRedis(client.Client, cache.WithTTL(cfg.CacheTTL)), nil
}

// openPublisher returns nil when no brokers are configured. Events go through
// an async buffer in front of a circuit-broken Kafka producer; closing the
// registry drains the buffer before the client is closed.
func (r *Registry) openPublisher(ctx context.Context, cfg config.Kafka, logger *slog.Logger) (service.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	r.closers = append(r.closers, func() error {
		client.Close()
		return nil
	})
	if err := events.EnsureTopic(ctx, client, cfg.Topic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		return nil, err
	}

	sink := events.NewKafkaPublisher(client, cfg.Topic,
		events.WithKafkaLogger(logger),
		events.WithKafkaMetrics(r.Metrics),
		events.WithCircuitBreaker(breakerThreshold, breakerCooldown),
	)
	async := events.NewAsyncPublisher(sink, cfg.Buffer,
		events.WithAsyncLogger(logger),
		events.WithAsyncMetrics(r.Metrics),
	)
	r.closers = append(r.closers, func() error {
		async.Close()
		return nil
	})
	return async, nil
}

// Close releases resources in reverse order of acquisition.
func (r *Registry) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
