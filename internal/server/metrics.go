package server

import (
	"net/http"

	"github.com/huangsam/transcomplex/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "transcomplex"

// serverMetrics holds the collectors exposed on /metrics.
type serverMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	texts    *prometheus.CounterVec
	overall  prometheus.Histogram
	tiers    *prometheus.CounterVec
}

// newServerMetrics registers every collector on a private registry so that
// several servers can live in one process.
func newServerMetrics() *serverMetrics {
	m := &serverMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
		texts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "texts_scored_total",
			Help:      "Texts scored by outcome (ok or error).",
		}, []string{"outcome"}),
		overall: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "overall_complexity",
			Help:      "Distribution of overall complexity scores.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tier_total",
			Help:      "Scored texts by complexity tier.",
		}, []string{"tier"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.texts,
		m.overall,
		m.tiers,
	)
	return m
}

// instrument wraps h with request counting and latency tracking for route.
func (m *serverMetrics) instrument(route string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h))
}

// observe records the outcome of one scored item.
func (m *serverMetrics) observe(item schema.BatchItem) {
	if item.Failed() {
		m.texts.WithLabelValues("error").Inc()
		return
	}
	m.texts.WithLabelValues("ok").Inc()
	m.overall.Observe(item.Result.Overall)
	m.tiers.WithLabelValues(string(item.Result.Tier)).Inc()
}

// handler serves the private registry.
func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
