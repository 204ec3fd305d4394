package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fms/internal/models"
	"fms/internal/scoring"
	"fms/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncCacheInvalidations()
	ObservePersistenceDuration(duration time.Duration)
	ObserveJobDuration(job string, duration time.Duration)
	IncReportsTotal(rank string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheInvalidations  prometheus.Counter
	persistenceDuration prometheus.Histogram
	jobDuration         *prometheus.HistogramVec
	reportsTotal        *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncCacheInvalidations() {
	m.cacheInvalidations.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveJobDuration(job string, duration time.Duration) {
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncReportsTotal(rank string) {
	m.reportsTotal.WithLabelValues(rank).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, ranks *scoring.RankSet, store *models.DocumentStore) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fms_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fms_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fms_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fms_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		cacheInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fms_cache_invalidations_total",
			Help: "Total number of cached views dropped after a mutation",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fms_persistence_duration_seconds",
			Help:    "Duration of document persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fms_job_duration_seconds",
			Help:    "Duration of scheduled snapshot jobs in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),

		reportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fms_reports_total",
			Help: "Total number of submitted administrative reports",
		}, []string{"rank"}),
	}

	for _, rank := range ranks.Names() {
		rank := rank
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "fms_registered_users",
			Help:        "Number of users who have ever submitted a report",
			ConstLabels: prometheus.Labels{"rank": rank},
		}, func() float64 {
			return float64(store.UserCount(rank))
		})
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncCacheInvalidations()                           {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveJobDuration(_ string, _ time.Duration)     {}
func (n *noopMetrics) IncReportsTotal(_ string)                         {}
