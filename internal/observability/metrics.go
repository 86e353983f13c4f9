// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons recorded by EventsSkipped.
const (
	SkipMalformedEnvelope = "malformed_envelope"
	SkipNoEventData       = "no_event_data"
	SkipBadBase64         = "bad_base64"
	SkipBadLayout         = "bad_layout"
	SkipBadRecord         = "bad_record"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	// Stream subscriber
	EnvelopesPublished *prometheus.CounterVec
	StreamRestarts     prometheus.Counter

	// Broker
	PublishFailures *prometheus.CounterVec
	MessagesDropped *prometheus.CounterVec

	// Persisters
	EventsSkipped    *prometheus.CounterVec
	RecordsPersisted *prometheus.CounterVec
	PersistFailures  *prometheus.CounterVec

	// Supervisor
	TaskRestarts *prometheus.CounterVec

	// Live feed
	LiveFeedConnections prometheus.Gauge

	// Archive
	EventsArchived prometheus.Counter
	ArchiveErrors  prometheus.Counter
}

// NewMetrics creates a Metrics instance registered on reg. A nil reg gets a
// fresh registry. Tests pass their own registry to avoid duplicate
// registration.
func NewMetrics(reg *prometheus.Registry, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "nft_auction_feed"
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EnvelopesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "envelopes_published_total",
			Help:      "Total number of transaction envelopes published by topic",
		}, []string{"topic"}),
		StreamRestarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "stream_restarts_total",
			Help:      "Total number of stream subscription restarts",
		}),

		PublishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "publish_failures_total",
			Help:      "Total number of failed broker publishes by topic",
		}, []string{"topic"}),
		MessagesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "messages_dropped_total",
			Help:      "Total number of messages dropped on full subscriber queues",
		}, []string{"topic"}),

		EventsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persister",
			Name:      "events_skipped_total",
			Help:      "Total number of skipped messages by event type and reason",
		}, []string{"event_type", "reason"}),
		RecordsPersisted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persister",
			Name:      "records_persisted_total",
			Help:      "Total number of domain records written by event type",
		}, []string{"event_type"}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persister",
			Name:      "persist_failures_total",
			Help:      "Total number of failed inserts by event type",
		}, []string{"event_type"}),

		TaskRestarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "task_restarts_total",
			Help:      "Total number of background task restarts by task",
		}, []string{"task"}),

		LiveFeedConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "live_feed_connections",
			Help:      "Current number of open live feed connections",
		}),

		EventsArchived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "events_archived_total",
			Help:      "Total number of feed events written to the archive",
		}),
		ArchiveErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "errors_total",
			Help:      "Total number of failed archive batch writes",
		}),
	}
}

// Handler returns an HTTP handler serving the registry these metrics are
// registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
