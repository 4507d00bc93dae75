package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	pixmetrics "pixkeys/internal/pixkey/metrics"
)

const headerEventType = "event_type"

var ErrCircuitOpen = errors.New("broker circuit open")

// KafkaPublisher produces lifecycle events to a single topic, keyed by pix key
// id. Produce is synchronous; wrap it in an AsyncPublisher on request paths.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	breaker *circuitBreaker
	logger  *slog.Logger
	metrics *pixmetrics.Metrics
}

type KafkaOption func(*KafkaPublisher)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithKafkaMetrics(m *pixmetrics.Metrics) KafkaOption {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

// WithCircuitBreaker opens the circuit after threshold consecutive produce
// failures and keeps it open for cooldown.
func WithCircuitBreaker(threshold int, cooldown time.Duration) KafkaOption {
	return func(p *KafkaPublisher) {
		p.breaker = newCircuitBreaker(threshold, cooldown)
	}
}

func NewKafkaPublisher(client *kgo.Client, topic string, opts ...KafkaOption) *KafkaPublisher {
	p := &KafkaPublisher{
		client:  client,
		topic:   topic,
		breaker: newCircuitBreaker(0, 0),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if !p.breaker.allow() {
		p.metrics.IncrementEventsDropped()
		return ErrCircuitOpen
	}
	value, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic:     p.topic,
		Key:       event.PartitionKey(),
		Value:     value,
		Timestamp: event.OccurredAt,
		Headers:   []kgo.RecordHeader{{Key: headerEventType, Value: []byte(event.Type)}},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.breaker.failure()
		p.metrics.IncrementEventsFailed()
		return fmt.Errorf("produce %s: %w", event.Type, err)
	}
	p.breaker.success()
	p.metrics.IncrementEventsPublished()
	p.logger.DebugContext(ctx, "event published",
		"event_type", event.Type,
		"key_id", event.KeyID.String(),
	)
	return nil
}

// EnsureTopic creates topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, t := range resp {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

// Consume polls the client's subscribed topics and hands every decoded event
// to fn until ctx is cancelled. Records that fail to decode are skipped.
func Consume(ctx context.Context, client *kgo.Client, logger *slog.Logger, fn func(Event) error) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			return fmt.Errorf("poll %s: %w", errs[0].Topic, errs[0].Err)
		}
		var handleErr error
		fetches.EachRecord(func(r *kgo.Record) {
			if handleErr != nil {
				return
			}
			event, err := Unmarshal(r.Value)
			if err != nil {
				logger.WarnContext(ctx, "skipping undecodable record",
					"topic", r.Topic,
					"offset", r.Offset,
					"error", err,
				)
				return
			}
			handleErr = fn(event)
		})
		if handleErr != nil {
			return handleErr
		}
	}
}
