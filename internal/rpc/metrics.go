package rpc

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	codecFailures   *prometheus.CounterVec
	wsClients       prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caip_rpc_requests_total",
				Help: "Total number of JSON-RPC requests processed",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caip_rpc_request_duration_seconds",
				Help:    "JSON-RPC request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		codecFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caip_codec_failures_total",
				Help: "Identifier validation failures by kind",
			},
			[]string{"kind"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "caip_ws_clients",
				Help: "Connected WebSocket clients",
			},
		),
	}

	m.registry.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.codecFailures,
		m.wsClients,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(method, status string, d time.Duration) {
	m.requestCounter.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) codecFailure(kind string) {
	m.codecFailures.WithLabelValues(kind).Inc()
}
