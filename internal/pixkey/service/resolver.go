package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	pixmetrics "pixkeys/internal/pixkey/metrics"
	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
	"pixkeys/pkg/platform/sentinel"
)

// Resolver answers read-only queries over registered keys. Every list result
// is ordered by creation time and may be empty.
type Resolver struct {
	store   Reader
	cache   Cache
	logger  *slog.Logger
	metrics *pixmetrics.Metrics
}

func NewResolver(store Reader, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("pix key store is required")
	}
	cfg := newConfig(opts)
	return &Resolver{
		store:   store,
		cache:   cfg.cache,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}, nil
}

// ByID looks up a single key. Lookup by id is exclusive: any other criterion
// in others fails with InvalidFilterCombination.
func (r *Resolver) ByID(ctx context.Context, keyID id.PixKeyID, others models.Filter) (*models.PixKey, error) {
	ctx, span := tracer.Start(ctx, "pixkey.ByID", trace.WithAttributes(attribute.String("pixkey.id", keyID.String())))
	defer span.End()
	defer r.metrics.ObserveOperation("by_id", time.Now())

	if !others.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidFilterCombination, "lookup by id cannot be combined with other filters")
	}
	if keyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pix key id is required")
	}

	if key, ok := r.fromCache(ctx, keyID); ok {
		return key, nil
	}

	key, err := r.store.FindByID(ctx, keyID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load pix key")
	}
	r.toCache(ctx, key)
	return key, nil
}

// ByFilters returns every key matching all present predicates.
func (r *Resolver) ByFilters(ctx context.Context, filter models.Filter) ([]*models.PixKey, error) {
	ctx, span := tracer.Start(ctx, "pixkey.ByFilters")
	defer span.End()
	defer r.metrics.ObserveOperation("by_filters", time.Now())

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	keys, err := r.store.FindByFilters(ctx, filter)
	if err != nil {
		return nil, translateStoreErr(err, "failed to search pix keys")
	}
	span.SetAttributes(attribute.Int("pixkey.results", len(keys)))
	return keys, nil
}

func (r *Resolver) ByType(ctx context.Context, keyType models.KeyType) ([]*models.PixKey, error) {
	if !keyType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidKeyType, "key type must be one of cpf, email, phone")
	}
	keys, err := r.store.FindByType(ctx, keyType)
	if err != nil {
		return nil, translateStoreErr(err, "failed to search pix keys by type")
	}
	return keys, nil
}

// ByAccount returns all keys, active and inactive, bound to the account.
func (r *Resolver) ByAccount(ctx context.Context, account models.Account) ([]*models.PixKey, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	keys, err := r.store.FindByAccount(ctx, account)
	if err != nil {
		return nil, translateStoreErr(err, "failed to search pix keys by account")
	}
	return keys, nil
}

// ByOwnerName matches the owner's first name as a case-insensitive substring.
func (r *Resolver) ByOwnerName(ctx context.Context, name string) ([]*models.PixKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeEmptyFilterSet, "owner name is required")
	}
	keys, err := r.store.FindByOwnerName(ctx, name)
	if err != nil {
		return nil, translateStoreErr(err, "failed to search pix keys by owner")
	}
	return keys, nil
}

// ByCreatedBetween returns keys created in [start, end).
func (r *Resolver) ByCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	keys, err := r.store.FindByCreatedBetween(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, translateStoreErr(err, "failed to search pix keys by creation date")
	}
	return keys, nil
}

// ByDeactivatedBetween returns keys deactivated in [start, end).
func (r *Resolver) ByDeactivatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	keys, err := r.store.FindByDeactivatedBetween(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, translateStoreErr(err, "failed to search pix keys by deactivation date")
	}
	return keys, nil
}

// ByCreatedOn returns keys created on day's UTC calendar date.
func (r *Resolver) ByCreatedOn(ctx context.Context, day time.Time) ([]*models.PixKey, error) {
	start, end := models.DayBounds(day)
	return r.ByCreatedBetween(ctx, start, end)
}

// ByDeactivatedOn returns keys deactivated on day's UTC calendar date.
func (r *Resolver) ByDeactivatedOn(ctx context.Context, day time.Time) ([]*models.PixKey, error) {
	start, end := models.DayBounds(day)
	return r.ByDeactivatedBetween(ctx, start, end)
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "both range bounds are required")
	}
	if !end.After(start) {
		return dErrors.New(dErrors.CodeValidation, "range end must be after range start")
	}
	return nil
}

func (r *Resolver) fromCache(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, bool) {
	if r.cache == nil {
		return nil, false
	}
	key, err := r.cache.Get(ctx, keyID)
	switch {
	case err == nil:
		r.metrics.IncrementCacheLookup("hit")
		return key, true
	case errors.Is(err, sentinel.ErrNotFound):
		r.metrics.IncrementCacheLookup("miss")
	default:
		r.metrics.IncrementCacheLookup("error")
		r.logger.WarnContext(ctx, "pix key cache read failed",
			"key_id", keyID.String(),
			"error", err,
		)
	}
	return nil, false
}

func (r *Resolver) toCache(ctx context.Context, key *models.PixKey) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key); err != nil {
		r.logger.WarnContext(ctx, "pix key cache write failed",
			"key_id", key.ID.String(),
			"error", err,
		)
	}
}
