package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	pixmetrics "pixkeys/internal/pixkey/metrics"
)

var (
	ErrBufferFull = errors.New("event buffer full")
	ErrClosed     = errors.New("publisher closed")
)

// Sink is anything that can deliver an event synchronously.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// AsyncPublisher decouples request latency from broker latency. Events are
// queued on a bounded buffer and delivered by a single worker; when the buffer
// is full the event is dropped and counted. Close drains what is queued.
type AsyncPublisher struct {
	sink    Sink
	queue   chan queued
	logger  *slog.Logger
	metrics *pixmetrics.Metrics

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

type queued struct {
	ctx   context.Context
	event Event
}

type AsyncOption func(*AsyncPublisher)

func WithAsyncLogger(logger *slog.Logger) AsyncOption {
	return func(p *AsyncPublisher) {
		p.logger = logger
	}
}

func WithAsyncMetrics(m *pixmetrics.Metrics) AsyncOption {
	return func(p *AsyncPublisher) {
		p.metrics = m
	}
}

// NewAsyncPublisher starts the delivery worker. buffer <= 0 defaults to 1024.
func NewAsyncPublisher(sink Sink, buffer int, opts ...AsyncOption) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 1024
	}
	p := &AsyncPublisher{
		sink:   sink,
		queue:  make(chan queued, buffer),
		logger: slog.New(slog.DiscardHandler),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Publish enqueues the event without blocking. The request context is
// detached from cancellation so delivery outlives the request.
func (p *AsyncPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		p.metrics.IncrementEventsDropped()
		p.logger.WarnContext(ctx, "event buffer full, dropping event",
			"event_type", event.Type,
			"key_id", event.KeyID.String(),
		)
		return ErrBufferFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for q := range p.queue {
		if err := p.sink.Publish(q.ctx, q.event); err != nil {
			p.logger.ErrorContext(q.ctx, "failed to deliver event",
				"event_type", q.event.Type,
				"key_id", q.event.KeyID.String(),
				"error", err,
			)
		}
	}
}

// Close stops accepting events and blocks until the queue is drained.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
}
