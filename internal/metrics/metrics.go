// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialdash_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		},
		[]string{"route", "status"},
	)

	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialdash_analyses_total",
			Help: "Analysis requests, by kind and outcome (ok or error code).",
		},
		[]string{"kind", "outcome"},
	)

	analysisSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trialdash_analysis_duration_seconds",
			Help:    "Time spent computing one analysis.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"kind"},
	)

	datasetsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialdash_dataset_loads_total",
			Help: "Dataset uploads, by outcome (ok or error code).",
		},
		[]string{"outcome"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trialdash_active_sessions",
			Help: "Sessions currently held in memory.",
		},
	)

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, analysesTotal, analysisSeconds, datasetsLoadedTotal, activeSessions)
	})
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// ObserveRequest counts one served HTTP request
func ObserveRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveAnalysis records the latency and outcome of one analysis
func ObserveAnalysis(kind, outcome string, elapsed time.Duration) {
	analysesTotal.WithLabelValues(kind, outcome).Inc()
	analysisSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveLoad counts one dataset upload
func ObserveLoad(outcome string) {
	datasetsLoadedTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions reports the current session count
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
