package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	stakingOps   *prometheus.CounterVec
	chainCalls   *prometheus.CounterVec
}

// New registers the platform collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		stakingOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "staking_operations_total",
			Help: "Staking ledger operations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		chainCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chain_calls_total",
			Help: "On-chain oracle and transfer calls by outcome.",
		}, []string{"call", "outcome"}),
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// ObserveStakingOp counts one staking ledger operation.
func (m *Metrics) ObserveStakingOp(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.stakingOps.WithLabelValues(kind, outcome).Inc()
}

// ObserveChainCall counts one balance-oracle or transfer call.
func (m *Metrics) ObserveChainCall(call string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.chainCalls.WithLabelValues(call, outcome).Inc()
}
