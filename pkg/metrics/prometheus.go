package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the retention service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Analysis
	analyses        *prometheus.CounterVec
	analysisLatency prometheus.Histogram
	comparisons     *prometheus.CounterVec
	dropoffs        prometheus.Counter
	bands           *prometheus.CounterVec
	insufficient    *prometheus.CounterVec

	// Adapters
	scrapes        *prometheus.CounterVec
	scrapeLatency  prometheus.Histogram
	suggestions    *prometheus.CounterVec
	suggestLatency prometheus.Histogram
	chartsRendered *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	systemGoroutineCount prometheus.Gauge
	systemMemoryUsage    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry the
// collectors land on the default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "retention",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.analyses = auto.NewCounterVec(m.counterOpts("analyses_total",
		"Total number of analyses by outcome (ok or error kind)"), []string{"outcome"})
	m.analysisLatency = auto.NewHistogram(m.histogramOpts("analysis_latency_milliseconds",
		"Latency of a single analysis run in milliseconds"))
	m.comparisons = auto.NewCounterVec(m.counterOpts("comparisons_total",
		"Total number of comparisons by result (complete, partial, failed)"), []string{"result"})
	m.dropoffs = auto.NewCounter(m.counterOpts("dropoffs_detected_total",
		"Total number of drop-off events detected"))
	m.bands = auto.NewCounterVec(m.counterOpts("bands_total",
		"Classification results by metric and band"), []string{"metric", "band"})
	m.insufficient = auto.NewCounterVec(m.counterOpts("insufficient_data_total",
		"Reports carrying insufficient data, by reason"), []string{"reason"})

	m.scrapes = auto.NewCounterVec(m.counterOpts("scrapes_total",
		"Total number of page scrapes by result"), []string{"result"})
	m.scrapeLatency = auto.NewHistogram(m.histogramOpts("scrape_latency_milliseconds",
		"Latency of page scrapes in milliseconds"))
	m.suggestions = auto.NewCounterVec(m.counterOpts("suggestions_total",
		"Total number of suggestion requests by result"), []string{"result"})
	m.suggestLatency = auto.NewHistogram(m.histogramOpts("suggest_latency_milliseconds",
		"Latency of suggestion requests in milliseconds"))
	m.chartsRendered = auto.NewCounterVec(m.counterOpts("charts_rendered_total",
		"Total number of charts rendered by kind"), []string{"kind"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio",
		"Queue utilization ratio (current size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Total number of rejected enqueues"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of workers running a job"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Job processing latency in milliseconds"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of failed jobs"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})

	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
}

// RecordAnalysis counts one analysis and its latency. outcome is "ok" or an
// error kind.
func RecordAnalysis(outcome string, latencyMs float64) {
	globalManager.analyses.WithLabelValues(outcome).Inc()
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordComparison counts one comparison.
func RecordComparison(result string) {
	globalManager.comparisons.WithLabelValues(result).Inc()
}

// RecordDropoffs adds n detected drop-off events.
func RecordDropoffs(n int) {
	if n > 0 {
		globalManager.dropoffs.Add(float64(n))
	}
}

// RecordBand counts one classification.
func RecordBand(metric, band string) {
	globalManager.bands.WithLabelValues(metric, band).Inc()
}

// RecordInsufficientData counts one report gap.
func RecordInsufficientData(reason string) {
	globalManager.insufficient.WithLabelValues(reason).Inc()
}

// RecordScrape counts one scrape attempt sequence.
func RecordScrape(result string, latencyMs float64) {
	globalManager.scrapes.WithLabelValues(result).Inc()
	globalManager.scrapeLatency.Observe(latencyMs)
}

// RecordSuggestion counts one suggestion request.
func RecordSuggestion(result string, latencyMs float64) {
	globalManager.suggestions.WithLabelValues(result).Inc()
	globalManager.suggestLatency.Observe(latencyMs)
}

// RecordChartRendered counts one rendered chart.
func RecordChartRendered(kind string) {
	globalManager.chartsRendered.WithLabelValues(kind).Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemStats samples goroutine count and heap usage.
func UpdateSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
