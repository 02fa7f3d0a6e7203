package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/edugames/internal/model"
)

// Metrics contains the Prometheus collectors for the service.
// Each instance owns its registry so tests and multiple servers never collide.
type Metrics struct {
	registry *prometheus.Registry

	AttemptsSubmitted   *prometheus.CounterVec
	AchievementsGranted *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New creates a fresh registry with Go runtime collectors and the service metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AttemptsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugames_attempts_submitted_total",
				Help: "Total number of game attempts recorded by kind",
			},
			[]string{"kind"},
		),
		AchievementsGranted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugames_achievements_granted_total",
				Help: "Total number of achievements granted by name",
			},
			[]string{"achievement"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugames_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edugames_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(m.AttemptsSubmitted)
	registry.MustRegister(m.AchievementsGranted)
	registry.MustRegister(m.HTTPRequests)
	registry.MustRegister(m.HTTPDuration)

	return m
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordAttempt increments the submission counter for a game kind
func (m *Metrics) RecordAttempt(kind model.GameKind) {
	if m == nil {
		return
	}
	m.AttemptsSubmitted.WithLabelValues(string(kind)).Inc()
}

// RecordAchievement increments the grant counter for an achievement
func (m *Metrics) RecordAchievement(name model.AchievementName) {
	if m == nil {
		return
	}
	m.AchievementsGranted.WithLabelValues(string(name)).Inc()
}

// RecordRequest records a completed HTTP request.
// route should be the route template, not the raw path, to keep cardinality bounded.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
