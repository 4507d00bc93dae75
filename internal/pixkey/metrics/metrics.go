package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the pix key registry.
// All methods are safe on a nil receiver so callers can leave metrics unwired.
type Metrics struct {
	KeysCreated       prometheus.Counter
	KeysAmended       prometheus.Counter
	KeysDeactivated   prometheus.Counter
	KeysRejected      *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
	EventsPublished   prometheus.Counter
	EventsFailed      prometheus.Counter
	EventsDropped     prometheus.Counter
}

// New registers the registry metrics with reg. Pass prometheus.DefaultRegisterer
// in production and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		KeysCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "pixkeys_keys_created_total",
			Help: "Total number of pix keys registered",
		}),
		KeysAmended: f.NewCounter(prometheus.CounterOpts{
			Name: "pixkeys_keys_amended_total",
			Help: "Total number of pix key amendments",
		}),
		KeysDeactivated: f.NewCounter(prometheus.CounterOpts{
			Name: "pixkeys_keys_deactivated_total",
			Help: "Total number of pix keys deactivated",
		}),
		KeysRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixkeys_operations_rejected_total",
			Help: "Lifecycle operations rejected by business rules, by operation and error code",
		}, []string{"operation", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pixkeys_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: latencyBuckets,
		}, []string{"operation"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixkeys_cache_lookups_total",
			Help: "Read-through cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "pixkeys_events_published_total",
			Help: "Lifecycle events delivered to the broker",
		}),
		EventsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "pixkeys_events_failed_total",
			Help: "Lifecycle events that could not be delivered",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "pixkeys_events_dropped_total",
			Help: "Lifecycle events dropped because the buffer was full or the circuit was open",
		}),
	}
}

// ObserveOperation records the duration of a registry operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.KeysCreated.Inc()
}

func (m *Metrics) IncrementAmended() {
	if m == nil {
		return
	}
	m.KeysAmended.Inc()
}

func (m *Metrics) IncrementDeactivated() {
	if m == nil {
		return
	}
	m.KeysDeactivated.Inc()
}

// IncrementRejected records a business-rule rejection, labelled by error code.
func (m *Metrics) IncrementRejected(operation, code string) {
	if m == nil {
		return
	}
	m.KeysRejected.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementEventsPublished() {
	if m == nil {
		return
	}
	m.EventsPublished.Inc()
}

func (m *Metrics) IncrementEventsFailed() {
	if m == nil {
		return
	}
	m.EventsFailed.Inc()
}

func (m *Metrics) IncrementEventsDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}
