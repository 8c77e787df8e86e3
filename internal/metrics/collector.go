// Package metrics exposes Prometheus metrics for the planner.
// Each Collector owns a private registry so tests can create as many as they
// like without duplicate-registration panics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the planner's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	plans           *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with all metrics registered under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "itinerary_plans_total",
				Help:      "Planning invocations by outcome.",
			},
			[]string{"outcome"},
		),
		gatewayCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_calls_total",
				Help:      "Completion gateway calls by stage (primary, repair) and result.",
			},
			[]string{"stage", "result"},
		),
		gatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_call_duration_seconds",
				Help:      "Completion gateway call latency.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
			},
			[]string{"stage"},
		),
	}

	c.registry.MustRegister(
		c.plans,
		c.gatewayCalls,
		c.gatewayDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// PlanOutcome counts one planning invocation.
func (c *Collector) PlanOutcome(outcome string) {
	c.plans.WithLabelValues(outcome).Inc()
}

// GatewayCall records one completion call.
func (c *Collector) GatewayCall(stage string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.gatewayCalls.WithLabelValues(stage, result).Inc()
	c.gatewayDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
