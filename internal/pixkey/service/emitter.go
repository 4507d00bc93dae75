package service

import (
	"context"
	"errors"
	"log/slog"

	"pixkeys/internal/pixkey/events"
	pixmetrics "pixkeys/internal/pixkey/metrics"
	"pixkeys/internal/pixkey/models"
	"pixkeys/pkg/platform/middleware/metadata"
	"pixkeys/pkg/requestcontext"
)

// eventEmitter writes the audit log line and hands the event to the
// publisher. Delivery is best-effort: the change is already committed, so a
// failure is logged and counted but never returned to the caller.
type eventEmitter struct {
	logger    *slog.Logger
	publisher Publisher
	metrics   *pixmetrics.Metrics
}

func newEventEmitter(logger *slog.Logger, publisher Publisher, m *pixmetrics.Metrics) *eventEmitter {
	return &eventEmitter{logger: logger, publisher: publisher, metrics: m}
}

func (e *eventEmitter) emit(ctx context.Context, t events.Type, key *models.PixKey) {
	event := events.New(t, key, requestcontext.Now(ctx))
	event.RequestID = requestcontext.RequestID(ctx)
	event.Actor = requestcontext.Subject(ctx)

	e.logger.InfoContext(ctx, string(t),
		"log_type", "audit",
		"key_id", key.ID.String(),
		"key_type", key.KeyType,
		"branch", key.Account.Branch,
		"account", key.Account.Number,
		"request_id", event.RequestID,
		"actor", event.Actor,
		"client_ip", metadata.GetClientIP(ctx),
	)

	if e.publisher == nil {
		return
	}
	err := e.publisher.Publish(ctx, event)
	switch {
	case err == nil:
	case errors.Is(err, events.ErrBufferFull):
		// already logged and counted as dropped by the async publisher
	default:
		e.metrics.IncrementEventsFailed()
		e.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"event_type", t,
			"key_id", key.ID.String(),
			"error", err,
		)
	}
}
