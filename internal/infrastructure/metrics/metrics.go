package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Operation metrics
	OperationsCreated  prometheus.Counter
	OperationsModified prometheus.Counter
	OperationsDeleted  prometheus.Counter
	OperationDuration  *prometheus.HistogramVec
	OperationAmount    prometheus.Histogram
	OperationErrors    *prometheus.CounterVec

	// Limit metrics
	LimitMutations       *prometheus.CounterVec
	CompensationFailures prometheus.Counter

	// Registry metrics
	QuotesServed prometheus.Counter
	RateUpdates  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec

	// Storage metrics
	DBRetries *prometheus.CounterVec

	// Outbox relay metrics
	OutboxEvents *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Operation metrics
		OperationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cambio_operations_created_total",
			Help: "Total number of exchange operations created",
		}),
		OperationsModified: factory.NewCounter(prometheus.CounterOpts{
			Name: "cambio_operations_modified_total",
			Help: "Total number of exchange operations edited",
		}),
		OperationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cambio_operations_deleted_total",
			Help: "Total number of exchange operations deleted",
		}),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cambio_operation_duration_seconds",
				Help:    "Duration of exchange operation commands",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		OperationAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cambio_operation_final_amount",
			Help:    "Final amounts reserved by exchange operations, in base currency",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_operation_errors_total",
				Help: "Total number of exchange operation errors by command and kind",
			},
			[]string{"command", "kind"},
		),

		// Limit metrics
		LimitMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_limit_mutations_total",
				Help: "Total limit ledger mutations by direction",
			},
			[]string{"direction"},
		),
		CompensationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cambio_compensation_failures_total",
			Help: "Compensating limit mutations that failed and need manual reconciliation",
		}),

		// Registry metrics
		QuotesServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "cambio_quotes_served_total",
			Help: "Total number of quotes resolved",
		}),
		RateUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_rate_updates_total",
				Help: "Total currency rate updates by currency",
			},
			[]string{"currency"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cambio_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cambio_http_in_flight_requests",
			Help: "Requests currently being served",
		}),

		// Cache metrics
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_rate_limit_hits_total",
				Help: "Requests rejected by the per-client rate limiter, by method",
			},
			[]string{"method"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),

		// Storage metrics
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_db_retries_total",
				Help: "Transactions re-run after a transient PostgreSQL error, by SQLSTATE",
			},
			[]string{"code"},
		),

		OutboxEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambio_outbox_events_total",
				Help: "Outbox events handled by the relay, by type and result",
			},
			[]string{"event_type", "result"},
		),
	}
}
