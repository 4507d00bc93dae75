package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"pixkeys/internal/pixkey/events"
	pixmetrics "pixkeys/internal/pixkey/metrics"
	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
	"pixkeys/pkg/platform/sentinel"
)

var tracer = otel.Tracer("pixkeys/internal/pixkey/service")

// Reader is the query side of the record store. Every list lookup returns keys
// ordered by creation time; an empty slice is a valid result.
type Reader interface {
	FindByID(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error)
	FindByKeyValue(ctx context.Context, value string) (*models.PixKey, error)
	FindByType(ctx context.Context, keyType models.KeyType) ([]*models.PixKey, error)
	FindByAccount(ctx context.Context, account models.Account) ([]*models.PixKey, error)
	FindByOwnerName(ctx context.Context, name string) ([]*models.PixKey, error)
	FindByCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error)
	FindByDeactivatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error)
	FindByFilters(ctx context.Context, filter models.Filter) ([]*models.PixKey, error)
	CountActiveByAccount(ctx context.Context, account models.Account) (int, error)
	CountByAccount(ctx context.Context, account models.Account) (int, error)
}

// Store is the record store consumed by the lifecycle engine.
//
// Create is the atomic count-and-reserve insert: it fails with
// sentinel.ErrAlreadyUsed when the key value exists and with
// sentinel.ErrLimitReached when the account is at the policy cap, checking both
// under the same lock as the insert.
//
// Execute loads a key, runs validate and, if it passes, applies mutate and
// persists the result while holding the row lock (mutex or FOR UPDATE). When
// mutate moves the key to another account, Execute counts that account under
// the account lock and fails with sentinel.ErrLimitReached if policy is full.
type Store interface {
	Reader
	Create(ctx context.Context, key *models.PixKey, policy models.LimitPolicy) error
	Save(ctx context.Context, key *models.PixKey) error
	Execute(ctx context.Context, keyID id.PixKeyID, policy models.LimitPolicy, validate func(*models.PixKey) error, mutate func(*models.PixKey)) (*models.PixKey, error)
	DeleteByID(ctx context.Context, keyID id.PixKeyID) error
}

// Cache is a read-through cache for lookups by id. Get returns
// sentinel.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error)
	Set(ctx context.Context, key *models.PixKey) error
	Invalidate(ctx context.Context, keyID id.PixKeyID) error
}

// Publisher receives lifecycle events after the change is persisted.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type serviceConfig struct {
	logger    *slog.Logger
	metrics   *pixmetrics.Metrics
	cache     Cache
	publisher Publisher
	limit     models.LimitPolicy
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *pixmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithCache(cache Cache) Option {
	return func(c *serviceConfig) {
		c.cache = cache
	}
}

func WithPublisher(p Publisher) Option {
	return func(c *serviceConfig) {
		c.publisher = p
	}
}

// WithLimitPolicy overrides the default active-only cap of five keys per account.
func WithLimitPolicy(p models.LimitPolicy) Option {
	return func(c *serviceConfig) {
		if p.Max > 0 {
			c.limit = p
		}
	}
}

func newConfig(opts []Option) *serviceConfig {
	cfg := &serviceConfig{limit: models.DefaultLimitPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// translateStoreErr maps store facts onto the domain taxonomy. Coded errors
// pass through untouched; anything unrecognised is a store fault.
func translateStoreErr(err error, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "pix key not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeDuplicateKey, "key value is already registered")
	case errors.Is(err, sentinel.ErrLimitReached):
		return dErrors.New(dErrors.CodeLimitExceeded, "key limit reached for this account")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, action)
	}
}
