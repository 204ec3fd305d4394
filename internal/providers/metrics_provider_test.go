package providers

import (
	"testing"
	"time"

	"fms/internal/models"
	"fms/internal/scoring"
	"fms/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func metricsTestDeps() (*scoring.RankSet, *models.DocumentStore) {
	conf := &structures.Config{
		Ranks: structures.RankRoles{
			MajorRoleID:     "100",
			LtColonelRoleID: "200",
		},
	}
	ranks := scoring.NewRankSet(conf)
	return ranks, models.NewStore(ranks.Names())
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	ranks, store := metricsTestDeps()
	m := NewMetricsProvider(conf, ranks, store)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncCacheInvalidations()
	m.ObservePersistenceDuration(time.Millisecond)
	m.ObserveJobDuration("daily", time.Millisecond)
	m.IncReportsTotal("major")
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	ranks, store := metricsTestDeps()
	m := NewMetricsProvider(conf, ranks, store)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	ranks, store := metricsTestDeps()
	m := NewMetricsProvider(conf, ranks, store)

	// These should not panic
	m.IncRequestsTotal("/scores/today", 200)
	m.IncRequestsTotal("/scores/today", 404)
	m.ObserveRequestDuration("/scores/today", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncCacheInvalidations()
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.ObserveJobDuration("weekly", 50*time.Millisecond)
	m.IncReportsTotal("lt_colonel")
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
