package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa as métricas do portal e das chamadas ao backend.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec

	sessionsActive prometheus.Gauge
}

// New registra as métricas num registry próprio.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ouvidoria_portal_http_requests_total",
				Help: "Total de requisições atendidas pelo portal",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ouvidoria_portal_http_request_duration_seconds",
				Help:    "Duração das requisições do portal",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		backendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ouvidoria_backend_requests_total",
				Help: "Total de chamadas ao backend da ouvidoria",
			},
			[]string{"method", "resource", "status"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ouvidoria_backend_request_duration_seconds",
				Help:    "Duração das chamadas ao backend",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "resource"},
		),
		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ouvidoria_portal_workspaces_active",
				Help: "Workspaces de sessão mantidos em memória",
			},
		),
	}
}

// ObserveHTTP registra uma requisição do portal.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveBackend registra uma chamada ao backend. status 0 indica falha de transporte.
func (c *Collector) ObserveBackend(method, resource string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.backendRequests.WithLabelValues(method, resource, strconv.Itoa(status)).Inc()
	c.backendDuration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

// SetWorkspaces atualiza o total de workspaces ativos.
func (c *Collector) SetWorkspaces(n int) {
	if c == nil {
		return
	}
	c.sessionsActive.Set(float64(n))
}

// Handler expõe o endpoint /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry devolve o registry subjacente.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
