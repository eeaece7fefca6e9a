// Package metrics provides Prometheus metrics for the pricewatch monitoring service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the pricewatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Check pipeline metrics
	checksTotal          *prometheus.CounterVec
	observationsAppended prometheus.Counter
	alertsSent           prometheus.Counter
	alertDeliveryErrors  prometheus.Counter

	// Extraction metrics
	titleMisses     prometheus.Counter
	priceMisses     prometheus.Counter
	transportErrors prometheus.Counter
	fetchLatency    prometheus.Histogram

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	enqueueErrors    prometheus.Counter

	// Worker metrics
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter
	trackedProducts   prometheus.Gauge
	storeErrors       prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDurationMilli *prometheus.HistogramVec
}

// Global metrics manager instance on a custom registry, so the default Go
// collectors do not pollute the scrape output.
var (
	customRegistry = prometheus.NewRegistry()
	globalManager  = NewManager(WithRegistry(customRegistry))
)

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pricewatch",
		subsystem:        "monitor",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.checksTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "checks_total",
		Help:      "Check cycles completed, labeled by outcome.",
	}, []string{"outcome"})

	m.observationsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observations_appended_total",
		Help:      "Price observations appended to the ledger.",
	})

	m.alertsSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alerts_sent_total",
		Help:      "Price alerts handed to the notification channel.",
	})

	m.alertDeliveryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alert_delivery_errors_total",
		Help:      "Alert deliveries that failed. Non-fatal.",
	})

	m.titleMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_title_misses_total",
		Help:      "Fetches where no title locator matched.",
	})

	m.priceMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_price_misses_total",
		Help:      "Fetches where no price locator matched or the text failed to parse.",
	})

	m.transportErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transport_errors_total",
		Help:      "Page fetches that failed at the transport level.",
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_ms",
		Help:      "Page fetch latency in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued check jobs.",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum capacity of the check job queue.",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue fill level between 0 and 1.",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Check jobs accepted by the queue.",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Check jobs handed to workers.",
	})

	m.enqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Enqueue attempts rejected (full or closed queue).",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of running check workers.",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_ms",
		Help:      "End-to-end check cycle latency in milliseconds.",
		Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Check cycles that ended with an error.",
	})

	m.trackedProducts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_products",
		Help:      "Number of products currently tracked.",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Record store operations that failed.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpDurationMilli = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})
}

// Handler returns an http.Handler exposing the manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package-level helpers operating on the global manager.

// RecordCheck records one completed check cycle with its outcome.
func RecordCheck(outcome string) { globalManager.checksTotal.WithLabelValues(outcome).Inc() }

// RecordObservation records one appended price observation.
func RecordObservation() { globalManager.observationsAppended.Inc() }

// RecordAlertSent records one alert handed to the notification channel.
func RecordAlertSent() { globalManager.alertsSent.Inc() }

// RecordAlertDeliveryError records a failed alert delivery.
func RecordAlertDeliveryError() { globalManager.alertDeliveryErrors.Inc() }

// RecordTitleMiss records a fetch where no title locator matched.
func RecordTitleMiss() { globalManager.titleMisses.Inc() }

// RecordPriceMiss records a fetch where no price could be extracted.
func RecordPriceMiss() { globalManager.priceMisses.Inc() }

// RecordTransportError records a transport-level fetch failure.
func RecordTransportError() { globalManager.transportErrors.Inc() }

// RecordFetchLatency records page fetch latency in milliseconds.
func RecordFetchLatency(ms float64) { globalManager.fetchLatency.Observe(ms) }

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets the queue fill level.
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }

// RecordEnqueue records an accepted enqueue.
func RecordEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordDequeue records a job handed to a worker.
func RecordDequeue() { globalManager.queueDequeues.Inc() }

// RecordEnqueueError records a rejected enqueue.
func RecordEnqueueError() { globalManager.enqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }

// RecordWorkerLatency records check cycle latency in milliseconds.
func RecordWorkerLatency(ms float64) { globalManager.workerLatency.Observe(ms) }

// RecordWorkerError records a check cycle that ended with an error.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// UpdateTrackedProducts sets the number of tracked products.
func UpdateTrackedProducts(n int) { globalManager.trackedProducts.Set(float64(n)) }

// RecordStoreError records a failed record store operation.
func RecordStoreError() { globalManager.storeErrors.Inc() }

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPDuration records HTTP request duration in milliseconds.
func ObserveHTTPDuration(endpoint string, ms float64) {
	globalManager.httpDurationMilli.WithLabelValues(endpoint).Observe(ms)
}

// Handler exposes the global registry for the /metrics endpoint.
func Handler() http.Handler { return globalManager.Handler() }
