package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exposed on /metrics.
type Metrics struct {
	reg        *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	ingestions *prometheus.CounterVec
	points     prometheus.Histogram
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tickerloom",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tickerloom",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tickerloom",
			Name:      "ingestions_total",
			Help:      "Uploaded files by outcome.",
		}, []string{"outcome"}),
		points: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tickerloom",
			Name:      "ingested_points",
			Help:      "Series length of accepted uploads.",
			Buckets:   prometheus.ExponentialBuckets(2, 4, 8),
		}),
	}
	m.reg.MustRegister(m.requests, m.duration, m.ingestions, m.points,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) observeIngestion(outcome string, points int) {
	m.ingestions.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.points.Observe(float64(points))
	}
}
