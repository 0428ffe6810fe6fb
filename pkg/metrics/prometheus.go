// Package metrics provides Prometheus metrics for the timeline service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the timeline service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Timeline content
	itemsCreated *prometheus.CounterVec
	itemsDeleted prometheus.Counter
	eventCount   prometheus.Gauge
	spanCount    prometheus.Gauge

	// Import / export
	imports        *prometheus.CounterVec
	importsDropped *prometheus.CounterVec
	exports        *prometheus.CounterVec

	// Rendering
	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	renderPrimitive prometheus.Gauge

	// Interaction loop
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueRejected    prometheus.Counter
	commandsApplied  *prometheus.CounterVec
	commandLatency   prometheus.Histogram
	snapshotsWritten prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "timeline",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.itemsCreated = auto.NewCounterVec(m.counterOpts("items_created_total", "Items created through the editing surface"), []string{"kind"})
	m.itemsDeleted = auto.NewCounter(m.counterOpts("events_deleted_total", "Point events removed by id deletion"))
	m.eventCount = auto.NewGauge(m.gaugeOpts("events", "Point events currently on the timeline"))
	m.spanCount = auto.NewGauge(m.gaugeOpts("timespans", "Duration spans currently on the timeline"))

	m.imports = auto.NewCounterVec(m.counterOpts("imports_total", "Document imports by format and result"), []string{"format", "result"})
	m.importsDropped = auto.NewCounterVec(m.counterOpts("import_records_dropped_total", "Imported records skipped as unrecognized"), []string{"reason"})
	m.exports = auto.NewCounterVec(m.counterOpts("exports_total", "Document exports by format"), []string{"format"})

	m.renders = auto.NewCounterVec(m.counterOpts("renders_total", "Full-surface renders by output format"), []string{"format"})
	m.renderDuration = auto.NewHistogramVec(m.histogramOpts("render_duration_milliseconds", "Render time in milliseconds"), []string{"format"})
	m.renderPrimitive = auto.NewGauge(m.gaugeOpts("render_primitives", "Draw primitives issued by the last render"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Commands waiting for the interaction loop"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum pending commands"))
	m.queueRejected = auto.NewCounter(m.counterOpts("queue_rejected_total", "Commands rejected because the queue was full or closed"))
	m.commandsApplied = auto.NewCounterVec(m.counterOpts("commands_total", "Commands applied by the interaction loop"), []string{"command", "result"})
	m.commandLatency = auto.NewHistogram(m.histogramOpts("command_latency_milliseconds", "Time spent applying one command"))
	m.snapshotsWritten = auto.NewCounter(m.counterOpts("snapshots_written_total", "Document snapshots persisted"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "error_type"})
}

// Timeline content.

// RecordItemCreated counts a created point event or duration span.
func RecordItemCreated(kind string) {
	globalManager.itemsCreated.WithLabelValues(kind).Inc()
}

// RecordEventsDeleted adds n removed events.
func RecordEventsDeleted(n int) {
	globalManager.itemsDeleted.Add(float64(n))
}

// UpdateItemCounts sets the current event and span gauges.
func UpdateItemCounts(events, spans int) {
	globalManager.eventCount.Set(float64(events))
	globalManager.spanCount.Set(float64(spans))
}

// Import / export.

// RecordImport counts an import attempt. result is "ok" or an error kind.
func RecordImport(format, result string) {
	globalManager.imports.WithLabelValues(format, result).Inc()
}

// RecordImportDropped counts a record skipped during import.
func RecordImportDropped(reason string) {
	globalManager.importsDropped.WithLabelValues(reason).Inc()
}

// RecordExport counts a document export.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// Rendering.

// RecordRender records one render and its duration.
func RecordRender(format string, durationMs float64, primitives int) {
	globalManager.renders.WithLabelValues(format).Inc()
	globalManager.renderDuration.WithLabelValues(format).Observe(durationMs)
	globalManager.renderPrimitive.Set(float64(primitives))
}

// Interaction loop.

// UpdateQueueSize sets the number of pending commands.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a command that could not be enqueued.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// RecordCommand records an applied command and its latency.
func RecordCommand(command, result string, latencyMs float64) {
	globalManager.commandsApplied.WithLabelValues(command, result).Inc()
	globalManager.commandLatency.Observe(latencyMs)
}

// RecordSnapshotWritten counts a persisted snapshot.
func RecordSnapshotWritten() {
	globalManager.snapshotsWritten.Inc()
}

// HTTP.

// RecordHTTPRequest increments the HTTP request counter.
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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
