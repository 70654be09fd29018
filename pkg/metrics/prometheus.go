// Package metrics provides Prometheus metrics for the tutorbot service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Inbound traffic
	eventsReceived  *prometheus.CounterVec
	eventsDuplicate prometheus.Counter
	eventsDropped   *prometheus.CounterVec

	// Rate limiter
	admissions       *prometheus.CounterVec
	rateLimitRecords prometheus.Gauge

	// Sessions and games
	activeSessions prometheus.Gauge
	gamesStarted   *prometheus.CounterVec
	gamesCompleted *prometheus.CounterVec
	levelUps       *prometheus.CounterVec
	sweptRecords   *prometheus.CounterVec

	// Completion provider
	completionLatency prometheus.Histogram
	completionErrors  prometheus.Counter

	// Transport
	transportErrors *prometheus.CounterVec

	// Queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tutorbot",
		subsystem:        "bot",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.eventsReceived = auto.NewCounterVec(m.counterOpts("events_received_total", "Inbound chat events by kind"), []string{"kind"})
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("events_duplicate_total", "Inbound events dropped as duplicate deliveries"))
	m.eventsDropped = auto.NewCounterVec(m.counterOpts("events_dropped_total", "Inbound events dropped before handling"), []string{"reason"})

	m.admissions = auto.NewCounterVec(m.counterOpts("rate_limit_admissions_total", "Rate limiter decisions"), []string{"result"})
	m.rateLimitRecords = auto.NewGauge(m.gaugeOpts("rate_limit_records", "Users with a live rate record"))

	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Users with a session record"))
	m.gamesStarted = auto.NewCounterVec(m.counterOpts("games_started_total", "Mini-games started by kind"), []string{"game"})
	m.gamesCompleted = auto.NewCounterVec(m.counterOpts("games_completed_total", "Mini-games completed by kind"), []string{"game"})
	m.levelUps = auto.NewCounterVec(m.counterOpts("level_ups_total", "Proficiency level promotions by new level"), []string{"level"})
	m.sweptRecords = auto.NewCounterVec(m.counterOpts("swept_records_total", "Idle records removed by the sweeper"), []string{"store"})

	m.completionLatency = auto.NewHistogram(m.histogramOpts("completion_latency_milliseconds", "Completion provider latency in milliseconds",
		[]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}))
	m.completionErrors = auto.NewCounter(m.counterOpts("completion_errors_total", "Failed completion requests"))

	m.transportErrors = auto.NewCounterVec(m.counterOpts("transport_errors_total", "Chat transport call failures by method"), []string{"method"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Events waiting in the dispatch queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Dispatch queue capacity"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running dispatch workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Per-event handling latency in milliseconds", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Events whose handler returned an error"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordEventReceived counts an inbound event of the given kind.
func RecordEventReceived(kind string) {
	globalManager.eventsReceived.WithLabelValues(kind).Inc()
}

// RecordEventDuplicate counts an inbound event discarded as a redelivery.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventDropped counts an inbound event discarded for reason.
func RecordEventDropped(reason string) {
	globalManager.eventsDropped.WithLabelValues(reason).Inc()
}

// RecordAdmission records one limiter decision.
func RecordAdmission(allowed bool) {
	result := "rejected"
	if allowed {
		result = "allowed"
	}
	globalManager.admissions.WithLabelValues(result).Inc()
}

// UpdateRateLimitRecords sets the number of live rate records.
func UpdateRateLimitRecords(count int) {
	globalManager.rateLimitRecords.Set(float64(count))
}

// UpdateActiveSessions sets the number of session records.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordGameStarted counts a started game.
func RecordGameStarted(game string) {
	globalManager.gamesStarted.WithLabelValues(game).Inc()
}

// RecordGameCompleted counts a completed game.
func RecordGameCompleted(game string) {
	globalManager.gamesCompleted.WithLabelValues(game).Inc()
}

// RecordLevelUp counts a promotion to level.
func RecordLevelUp(level string) {
	globalManager.levelUps.WithLabelValues(level).Inc()
}

// RecordSwept adds n reaped records for store.
func RecordSwept(store string, n int) {
	globalManager.sweptRecords.WithLabelValues(store).Add(float64(n))
}

// RecordCompletionLatency records completion latency in milliseconds.
func RecordCompletionLatency(latencyMs float64) {
	globalManager.completionLatency.Observe(latencyMs)
}

// RecordCompletionError counts a failed completion.
func RecordCompletionError() {
	globalManager.completionErrors.Inc()
}

// RecordTransportError counts a failed transport call.
func RecordTransportError(method string) {
	globalManager.transportErrors.WithLabelValues(method).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-event handling latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a handler failure.
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

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
