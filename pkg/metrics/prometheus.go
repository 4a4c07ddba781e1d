// Package metrics provides Prometheus metrics for the delega assignment service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assignment path labels.
const (
	PathAdvisory = "advisory"
	PathFallback = "fallback"
)

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Assignment metrics
	assignmentsTotal *prometheus.CounterVec
	subtasksCreated  prometheus.Counter
	advisoryLatency  prometheus.Histogram
	advisoryErrors   prometheus.Counter
	parseErrors      prometheus.Counter

	// Completion / performance metrics
	completionsProcessed prometheus.Counter
	completionErrors     prometheus.Counter
	duplicateEvents      prometheus.Counter
	foldLatency          prometheus.Histogram

	// Completion queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerShards       prometheus.Gauge

	// Ranking store metrics
	rankingUpdateLatency prometheus.Histogram
	rankingQueryLatency  prometheus.Histogram
	workersTracked       prometheus.Gauge

	// Store metrics
	storeErrors *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "delega",
		subsystem:        "assignment",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initCollectors()
	return m
}

func (m *Manager) initCollectors() {
	factory := promauto.With(m.registry)

	m.assignmentsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assignments_total",
		Help:      "Completed assignment requests by path (advisory or fallback).",
	}, []string{"path"})

	m.subtasksCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subtasks_created_total",
		Help:      "Subtasks materialized by the assignment engine.",
	})

	m.advisoryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advisory_latency_ms",
		Help:      "Advisory model round-trip latency in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.advisoryErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advisory_errors_total",
		Help:      "Advisory calls that failed or returned an empty reply.",
	})

	m.parseErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advisory_parse_errors_total",
		Help:      "Advisory replies rejected as malformed or invalid.",
	})

	m.completionsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "performance",
		Name:      "completions_processed_total",
		Help:      "Completion events folded into worker performance state.",
	})

	m.completionErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "performance",
		Name:      "completion_errors_total",
		Help:      "Completion events that failed to process.",
	})

	m.duplicateEvents = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "performance",
		Name:      "duplicate_events_total",
		Help:      "Completion events rejected by the deduper.",
	})

	m.foldLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "performance",
		Name:      "fold_latency_ms",
		Help:      "Latency of one performance fold in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "size",
		Help:      "Current number of queued completion events.",
	})

	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "capacity",
		Help:      "Configured completion queue capacity.",
	})

	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "utilization",
		Help:      "Queue fill ratio between 0 and 1.",
	})

	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "enqueue_errors_total",
		Help:      "Enqueue attempts rejected by the completion queue.",
	})

	m.workerShards = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "worker_shards",
		Help:      "Number of single-writer completion shards.",
	})

	m.rankingUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ranking",
		Name:      "update_latency_ms",
		Help:      "Ranking store update latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.rankingQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ranking",
		Name:      "query_latency_ms",
		Help:      "Ranking store query latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.workersTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ranking",
		Name:      "workers_tracked",
		Help:      "Workers currently present in the ranking store.",
	})

	m.storeErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Store errors by component and reason.",
	}, []string{"component", "reason"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the registry backing the global manager, for serving
// /metrics without the default Go collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers on the global manager.

func RecordAssignment(path string) {
	if globalManager.enabled {
		globalManager.assignmentsTotal.WithLabelValues(path).Inc()
	}
}

func RecordSubtasksCreated(n int) {
	if globalManager.enabled {
		globalManager.subtasksCreated.Add(float64(n))
	}
}

func RecordAdvisoryLatency(ms float64) {
	if globalManager.enabled {
		globalManager.advisoryLatency.Observe(ms)
	}
}

func RecordAdvisoryError() {
	if globalManager.enabled {
		globalManager.advisoryErrors.Inc()
	}
}

func RecordParseError() {
	if globalManager.enabled {
		globalManager.parseErrors.Inc()
	}
}

func RecordCompletionProcessed() {
	if globalManager.enabled {
		globalManager.completionsProcessed.Inc()
	}
}

func RecordCompletionError() {
	if globalManager.enabled {
		globalManager.completionErrors.Inc()
	}
}

func RecordDuplicateEvent() {
	if globalManager.enabled {
		globalManager.duplicateEvents.Inc()
	}
}

func RecordFoldLatency(ms float64) {
	if globalManager.enabled {
		globalManager.foldLatency.Observe(ms)
	}
}

func UpdateQueueSize(n int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(n))
	}
}

func UpdateQueueCapacity(n int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(n))
	}
}

func UpdateQueueUtilization(ratio float64) {
	if globalManager.enabled {
		globalManager.queueUtilization.Set(ratio)
	}
}

func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

func UpdateWorkerShards(n int) {
	if globalManager.enabled {
		globalManager.workerShards.Set(float64(n))
	}
}

func RecordRankingUpdateLatency(ms float64) {
	if globalManager.enabled {
		globalManager.rankingUpdateLatency.Observe(ms)
	}
}

func RecordRankingQueryLatency(ms float64) {
	if globalManager.enabled {
		globalManager.rankingQueryLatency.Observe(ms)
	}
}

func UpdateWorkersTracked(n int) {
	if globalManager.enabled {
		globalManager.workersTracked.Set(float64(n))
	}
}

func RecordStoreError(component, reason string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(component, reason).Inc()
	}
}

func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
	}
}
