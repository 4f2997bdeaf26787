// Package metrics provides Prometheus metrics for the outreach service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	postsScored      *prometheus.CounterVec
	profilesScored   *prometheus.CounterVec
	commentTargets   prometheus.Counter
	scoringLatency   *prometheus.HistogramVec
	reportsGenerated prometheus.Counter
	duplicates       prometheus.Counter

	// Admission
	admissions      *prometheus.CounterVec
	actionsRecorded *prometheus.CounterVec
	hourlyActions   prometheus.Gauge
	profilesSession prometheus.Gauge
	messagesToday   prometheus.Gauge
	commentsToday   prometheus.Gauge

	// Campaign
	campaignOutcomes *prometheus.CounterVec
	breaksTaken      prometheus.Counter
	jobs             *prometheus.CounterVec
	jobQueueDepth    prometheus.Gauge
	jobDuration      prometheus.Histogram

	// System
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "outreach",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		enabled:          true,
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
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.postsScored = auto.NewCounterVec(m.counterOpts("posts_scored_total",
		"Posts scored by the opportunity scorer, by mode"), []string{"mode"})
	m.profilesScored = auto.NewCounterVec(m.counterOpts("profiles_scored_total",
		"Profiles scored for relevance, by category"), []string{"category"})
	m.commentTargets = auto.NewCounter(m.counterOpts("comment_targets_total",
		"Comment opportunities produced"))
	m.scoringLatency = auto.NewHistogramVec(m.histogramOpts("scoring_latency_milliseconds",
		"Latency of one ranking call in milliseconds"), []string{"routine"})
	m.reportsGenerated = auto.NewCounter(m.counterOpts("reports_generated_total",
		"Aggregate reports generated"))
	m.duplicates = auto.NewCounter(m.counterOpts("duplicates_total",
		"Records dropped because they were already seen"))

	m.admissions = auto.NewCounterVec(m.counterOpts("admissions_total",
		"Admission checks by kind and result"), []string{"kind", "result"})
	m.actionsRecorded = auto.NewCounterVec(m.counterOpts("actions_recorded_total",
		"Actions recorded against the rate limiter, by kind"), []string{"kind"})
	m.hourlyActions = auto.NewGauge(m.gaugeOpts("hourly_actions",
		"Actions inside the rolling hourly window"))
	m.profilesSession = auto.NewGauge(m.gaugeOpts("session_profiles",
		"Profiles scraped in the current session"))
	m.messagesToday = auto.NewGauge(m.gaugeOpts("daily_messages",
		"Messages sent in the current day"))
	m.commentsToday = auto.NewGauge(m.gaugeOpts("daily_comments",
		"Comments posted in the current day"))

	m.campaignOutcomes = auto.NewCounterVec(m.counterOpts("campaign_outcomes_total",
		"Campaign item outcomes by kind and status"), []string{"kind", "status"})
	m.breaksTaken = auto.NewCounter(m.counterOpts("breaks_total",
		"Pacing breaks taken during campaigns"))
	m.jobs = auto.NewCounterVec(m.counterOpts("campaign_jobs_total",
		"Campaign jobs by lifecycle event"), []string{"event"})
	m.jobQueueDepth = auto.NewGauge(m.gaugeOpts("campaign_job_queue_depth",
		"Campaign jobs waiting for a worker"))
	m.jobDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "campaign_job_duration_seconds",
		Help: "Wall time of one campaign job", ConstLabels: m.constLabels,
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	m.memoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated by the process"))
	m.goroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of live goroutines"))
	m.gcPauseTime = auto.NewGauge(m.gaugeOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
}

// RecordPostsScored adds n scored posts for the given mode.
func (m *Manager) RecordPostsScored(mode string, n int) {
	if m.enabled {
		m.postsScored.WithLabelValues(mode).Add(float64(n))
	}
}

// RecordProfileScored counts one scored profile.
func (m *Manager) RecordProfileScored(category string) {
	if m.enabled {
		m.profilesScored.WithLabelValues(category).Inc()
	}
}

// RecordAdmission counts an admission check.
func (m *Manager) RecordAdmission(kind string, allowed bool) {
	if !m.enabled {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.admissions.WithLabelValues(kind, result).Inc()
}

// RecordPostsScored adds n scored posts for the given mode.
func RecordPostsScored(mode string, n int) { globalManager.RecordPostsScored(mode, n) }

// RecordProfileScored counts one scored profile.
func RecordProfileScored(category string) { globalManager.RecordProfileScored(category) }

// RecordCommentTargets adds n comment opportunities.
func RecordCommentTargets(n int) {
	if globalManager.enabled {
		globalManager.commentTargets.Add(float64(n))
	}
}

// RecordScoringLatency records the latency of a ranking routine in milliseconds.
func RecordScoringLatency(routine string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.scoringLatency.WithLabelValues(routine).Observe(latencyMs)
	}
}

// RecordReportGenerated counts an aggregate report.
func RecordReportGenerated() {
	if globalManager.enabled {
		globalManager.reportsGenerated.Inc()
	}
}

// RecordDuplicate counts a record dropped by the dedupe set.
func RecordDuplicate() {
	if globalManager.enabled {
		globalManager.duplicates.Inc()
	}
}

// RecordAdmission counts an admission check.
func RecordAdmission(kind string, allowed bool) { globalManager.RecordAdmission(kind, allowed) }

// RecordActionRecorded counts an action recorded against the limiter.
func RecordActionRecorded(kind string) {
	if globalManager.enabled {
		globalManager.actionsRecorded.WithLabelValues(kind).Inc()
	}
}

// UpdateLimiterUsage publishes the limiter counters.
func UpdateLimiterUsage(hourly, profiles, messages, comments int) {
	if !globalManager.enabled {
		return
	}
	globalManager.hourlyActions.Set(float64(hourly))
	globalManager.profilesSession.Set(float64(profiles))
	globalManager.messagesToday.Set(float64(messages))
	globalManager.commentsToday.Set(float64(comments))
}

// RecordCampaignOutcome counts a campaign item outcome.
func RecordCampaignOutcome(kind, status string) {
	if globalManager.enabled {
		globalManager.campaignOutcomes.WithLabelValues(kind, status).Inc()
	}
}

// RecordBreak counts a pacing break.
func RecordBreak() {
	if globalManager.enabled {
		globalManager.breaksTaken.Inc()
	}
}

// RecordJob counts a campaign job lifecycle event: enqueued, rejected, done or failed.
func RecordJob(event string) {
	if globalManager.enabled {
		globalManager.jobs.WithLabelValues(event).Inc()
	}
}

// UpdateJobQueueDepth publishes the number of queued campaign jobs.
func UpdateJobQueueDepth(n int) {
	if globalManager.enabled {
		globalManager.jobQueueDepth.Set(float64(n))
	}
}

// RecordJobDuration records how long a campaign job ran, in seconds.
func RecordJobDuration(seconds float64) {
	if globalManager.enabled {
		globalManager.jobDuration.Observe(seconds)
	}
}

// UpdateSystemMemoryUsage publishes allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.memoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount publishes the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	if globalManager.enabled {
		globalManager.goroutineCount.Set(float64(n))
	}
}

// RecordSystemGCPauseTime publishes the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.gcPauseTime.Set(ms)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
