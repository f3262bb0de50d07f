// Package metrics provides Prometheus metrics for the moatwatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Run metrics - one pipeline run == one scheduled or manual invocation
	runsTotal    *prometheus.CounterVec
	runDuration  prometheus.Histogram
	stepDuration *prometheus.HistogramVec
	lastRunUnix  prometheus.Gauge

	// Collection metrics
	symbolsDiscovered prometheus.Gauge
	symbolsCollected  prometheus.Counter
	symbolsSkipped    prometheus.Counter
	fetchErrors       prometheus.Counter
	fetchLatency      prometheus.Histogram

	// Analysis metrics
	picksCount    prometheus.Gauge
	scoringErrors prometheus.Counter

	// Queue metrics
	queueCapacity    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter

	// Worker metrics
	workerCount prometheus.Gauge

	// Publish metrics
	publishTotal    *prometheus.CounterVec
	publishDuration prometheus.Histogram
	noopCommits     prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking by component
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
		namespace:        "moatwatch",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric declarations are flat and long by nature
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by result",
		},
		[]string{"result"},
	)

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of end-to-end pipeline run duration in seconds",
		Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
	})

	m.stepDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "step_duration_seconds",
			Help:      "Histogram of per-step duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"step"},
	)

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed run",
	})

	m.symbolsDiscovered = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "symbols_discovered",
		Help:      "Number of symbols in the universe for the current run",
	})

	m.symbolsCollected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "symbols_collected_total",
		Help:      "Total number of symbols with fundamentals collected",
	})

	m.symbolsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "symbols_skipped_total",
		Help:      "Total number of symbols skipped due to insufficient data",
	})

	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Total number of fundamentals fetch errors",
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_milliseconds",
		Help:      "Histogram of per-symbol fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.picksCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_count",
		Help:      "Number of picks produced by the last analysis step",
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring errors",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the fetch job queue",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the fetch job queue",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of jobs enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of jobs dequeued",
	})

	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueues (queue closed or full)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of fetch workers",
	})

	m.publishTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "publish_total",
			Help:      "Total number of publish operations by target and result",
		},
		[]string{"target", "result"},
	)

	m.publishDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "publish_duration_seconds",
		Help:      "Histogram of publish step duration in seconds",
		Buckets:   []float64{0.5, 1, 5, 15, 60, 300},
	})

	m.noopCommits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "noop_commits_total",
		Help:      "Total number of data commits skipped because nothing changed",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and kind",
		},
		[]string{"component", "kind"},
	)
}

// GetRegistry returns the custom registry used by the global manager so it
// can be served over HTTP.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Global helpers mirror the manager's metric set. All of them are safe to
// call before any explicit initialization because of the package init.

func RecordRun(result string)        { globalManager.runsTotal.WithLabelValues(result).Inc() }
func RecordRunDuration(sec float64)  { globalManager.runDuration.Observe(sec) }
func RecordLastRun(unixSec float64)  { globalManager.lastRunUnix.Set(unixSec) }
func RecordStepDuration(step string, sec float64) {
	globalManager.stepDuration.WithLabelValues(step).Observe(sec)
}

func UpdateSymbolsDiscovered(n int) { globalManager.symbolsDiscovered.Set(float64(n)) }
func RecordSymbolCollected()        { globalManager.symbolsCollected.Inc() }
func RecordSymbolSkipped()          { globalManager.symbolsSkipped.Inc() }
func RecordFetchError()             { globalManager.fetchErrors.Inc() }
func RecordFetchLatency(ms float64) { globalManager.fetchLatency.Observe(ms) }

func UpdatePicksCount(n int) { globalManager.picksCount.Set(float64(n)) }
func RecordScoringError()    { globalManager.scoringErrors.Inc() }

func UpdateQueueCapacity(n int)  { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueSize(n int)      { globalManager.queueSize.Set(float64(n)) }
func RecordQueueEnqueue()        { globalManager.queueEnqueues.Inc() }
func RecordQueueDequeue()        { globalManager.queueDequeues.Inc() }
func RecordQueueEnqueueError()   { globalManager.queueEnqueueErrs.Inc() }
func UpdateWorkerCount(n int)    { globalManager.workerCount.Set(float64(n)) }

func RecordPublish(target, result string) {
	globalManager.publishTotal.WithLabelValues(target, result).Inc()
}
func RecordPublishDuration(sec float64) { globalManager.publishDuration.Observe(sec) }
func RecordNoopCommit()                 { globalManager.noopCommits.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}
