// Package metrics собирает метрики Prometheus для HTTP и gRPC.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор метрик сервиса на собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIActiveRequests  prometheus.Gauge
	APIRateLimited     prometheus.Counter
	GRPCRequestsTotal  *prometheus.CounterVec
}

// New регистрирует метрики и стандартные коллекторы Go и процесса.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmorate_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filmorate_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "endpoint"},
		),
		APIActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "filmorate_api_active_requests",
				Help: "Current number of active API requests",
			},
		),
		APIRateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filmorate_api_rate_limited_total",
				Help: "Total number of API requests rejected by the rate limiter",
			},
		),
		GRPCRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmorate_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
	}
}

// Handler отдает метрики в текстовом формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry нужен тестам для чтения значений.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAPIRequest учитывает один HTTP запрос.
func (m *Metrics) RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest увеличивает или уменьшает число обрабатываемых запросов.
func (m *Metrics) TrackActiveRequest(inc bool) {
	if inc {
		m.APIActiveRequests.Inc()
	} else {
		m.APIActiveRequests.Dec()
	}
}

// RecordGRPCRequest учитывает один gRPC вызов.
func (m *Metrics) RecordGRPCRequest(method, code string) {
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
}
