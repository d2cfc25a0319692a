package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

type metrics struct {
	registry       *prometheus.Registry
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	rateLimitHits  *prometheus.CounterVec
	webVitals      *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "api",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}, []string{"route"}),
		webVitals: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "web",
			Name:      "vitals_value",
			Help:      "Web vitals reported by browsers; milliseconds except CLS, which is unitless",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 12),
		}, []string{"name", "rating"}),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestLatency,
		m.rateLimitHits,
		m.webVitals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observe(method, route string, status int, d time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(d.Seconds())
}

func (m *metrics) rateLimited(route string) {
	m.rateLimitHits.With(prometheus.Labels{"route": route}).Inc()
}

func (m *metrics) webVital(name, rating string, value float64) {
	if rating == "" {
		rating = "unknown"
	}
	m.webVitals.With(prometheus.Labels{"name": name, "rating": rating}).Observe(value)
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
