package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pixkeys/internal/pixkey/events"
	pixmetrics "pixkeys/internal/pixkey/metrics"
	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
	"pixkeys/pkg/platform/sentinel"
	"pixkeys/pkg/requestcontext"
)

const (
	opCreate     = "create"
	opAmend      = "amend"
	opDeactivate = "deactivate"
)

// Engine enforces the key lifecycle: registration, amendment of account and
// owner data, and logical deactivation.
type Engine struct {
	store   Store
	cache   Cache
	limit   models.LimitPolicy
	logger  *slog.Logger
	metrics *pixmetrics.Metrics
	emitter *eventEmitter
}

func NewEngine(store Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("pix key store is required")
	}
	cfg := newConfig(opts)
	return &Engine{
		store:   store,
		cache:   cfg.cache,
		limit:   cfg.limit,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		emitter: newEventEmitter(cfg.logger, cfg.publisher, cfg.metrics),
	}, nil
}

// Create registers a new active key.
//
// Checks run in a fixed order and the first failure wins: key value
// uniqueness, then the account limit, then the key format. The store repeats
// the uniqueness and limit checks under its lock when inserting, so two
// concurrent requests can never both pass.
func (e *Engine) Create(ctx context.Context, req models.CreateRequest) (*models.PixKey, error) {
	ctx, span := tracer.Start(ctx, "pixkey.Create")
	defer span.End()
	defer e.metrics.ObserveOperation(opCreate, time.Now())

	req.Normalize()
	span.SetAttributes(
		attribute.String("pixkey.type", req.KeyType),
		attribute.Int("pixkey.branch", req.Account.Branch),
	)

	if err := e.checkAvailability(ctx, req.KeyValue, req.Account); err != nil {
		return nil, e.reject(span, opCreate, err)
	}

	keyType, err := models.ParseKeyType(req.KeyType)
	if err != nil {
		return nil, e.reject(span, opCreate, err)
	}
	if err := models.ValidateKeyValue(keyType, req.KeyValue); err != nil {
		return nil, e.reject(span, opCreate, err)
	}

	key, err := models.NewPixKey(id.NewPixKeyID(), keyType, req.KeyValue, req.AccountType, req.Account, req.Owner, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, e.reject(span, opCreate, err)
	}

	if err := e.store.Create(ctx, key, e.limit); err != nil {
		return nil, e.reject(span, opCreate, translateStoreErr(err, "failed to create pix key"))
	}

	e.metrics.IncrementCreated()
	e.emitter.emit(ctx, events.TypeCreated, key)
	span.SetAttributes(attribute.String("pixkey.id", key.ID.String()))
	return key, nil
}

// checkAvailability reads the key value and the account usage concurrently,
// then reports uniqueness before the limit.
func (e *Engine) checkAvailability(ctx context.Context, keyValue string, account models.Account) error {
	var (
		taken bool
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := e.store.FindByKeyValue(gctx, keyValue)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		taken = true
		return nil
	})
	g.Go(func() error {
		n, err := e.countTowardsLimit(gctx, account)
		count = n
		return err
	})
	if err := g.Wait(); err != nil {
		return translateStoreErr(err, "failed to check key availability")
	}

	if taken {
		return dErrors.New(dErrors.CodeDuplicateKey, "key value is already registered")
	}
	if !e.limit.Allows(count) {
		return dErrors.New(dErrors.CodeLimitExceeded, "key limit reached for this account")
	}
	return nil
}

func (e *Engine) countTowardsLimit(ctx context.Context, account models.Account) (int, error) {
	if e.limit.CountInactive {
		return e.store.CountByAccount(ctx, account)
	}
	return e.store.CountActiveByAccount(ctx, account)
}

// Amend changes the account type, account or owner of an active key. Absent
// fields keep their current values; the key type and value never change.
//
// When the amendment moves the key to another account the target account's
// limit is checked up front and again by the store under the same lock as the
// write, so a create racing the move cannot take the account past the cap.
func (e *Engine) Amend(ctx context.Context, keyID id.PixKeyID, change models.Amendment) (*models.PixKey, error) {
	ctx, span := tracer.Start(ctx, "pixkey.Amend", trace.WithAttributes(attribute.String("pixkey.id", keyID.String())))
	defer span.End()
	defer e.metrics.ObserveOperation(opAmend, time.Now())

	if err := change.Validate(); err != nil {
		return nil, e.reject(span, opAmend, err)
	}

	current, err := e.store.FindByID(ctx, keyID)
	if err != nil {
		return nil, e.reject(span, opAmend, translateStoreErr(err, "failed to load pix key"))
	}
	if err := current.CanAmend(); err != nil {
		return nil, e.reject(span, opAmend, err)
	}

	if target := change.TargetAccount(current.Account); target != current.Account {
		count, err := e.countTowardsLimit(ctx, target)
		if err != nil {
			return nil, e.reject(span, opAmend, translateStoreErr(err, "failed to count keys for account"))
		}
		if !e.limit.Allows(count) {
			return nil, e.reject(span, opAmend, dErrors.New(dErrors.CodeLimitExceeded, "key limit reached for the target account"))
		}
	}

	updated, err := e.store.Execute(ctx, keyID, e.limit,
		func(k *models.PixKey) error {
			return k.CanAmend()
		},
		func(k *models.PixKey) {
			k.ApplyAmendment(change)
		},
	)
	if err != nil {
		return nil, e.reject(span, opAmend, translateStoreErr(err, "failed to amend pix key"))
	}

	e.invalidate(ctx, keyID)
	e.metrics.IncrementAmended()
	e.emitter.emit(ctx, events.TypeAmended, updated)
	return updated, nil
}

// Deactivate marks an active key inactive at the request time. It is
// terminal: a second call fails with AlreadyInactive.
func (e *Engine) Deactivate(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error) {
	ctx, span := tracer.Start(ctx, "pixkey.Deactivate", trace.WithAttributes(attribute.String("pixkey.id", keyID.String())))
	defer span.End()
	defer e.metrics.ObserveOperation(opDeactivate, time.Now())

	now := requestcontext.Now(ctx)
	updated, err := e.store.Execute(ctx, keyID, e.limit,
		func(k *models.PixKey) error {
			return k.CanDeactivate()
		},
		func(k *models.PixKey) {
			k.ApplyDeactivation(now)
		},
	)
	if err != nil {
		return nil, e.reject(span, opDeactivate, translateStoreErr(err, "failed to deactivate pix key"))
	}

	e.invalidate(ctx, keyID)
	e.metrics.IncrementDeactivated()
	e.emitter.emit(ctx, events.TypeDeactivated, updated)
	return updated, nil
}

func (e *Engine) invalidate(ctx context.Context, keyID id.PixKeyID) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, keyID); err != nil {
		e.logger.WarnContext(ctx, "failed to invalidate cached pix key",
			"key_id", keyID.String(),
			"error", err,
		)
	}
}

// reject records a failed operation on the span and metrics and returns err.
func (e *Engine) reject(span trace.Span, operation string, err error) error {
	code := dErrors.CodeOf(err)
	span.SetStatus(codes.Error, string(code))
	if code == dErrors.CodeUnavailable || code == dErrors.CodeInternal {
		span.RecordError(err)
	}
	e.metrics.IncrementRejected(operation, string(code))
	return err
}
