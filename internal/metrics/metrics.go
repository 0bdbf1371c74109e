package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "youwow"

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	webhooks     *prometheus.CounterVec
	claims       *prometheus.CounterVec
	pipelineRuns *prometheus.CounterVec
	conversions  *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
	queueDepth   prometheus.Gauge
}

// New registers every collector on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Payment notifications by provider and verification result.",
		}, []string{"provider", "result"}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_claims_total",
			Help:      "Processing claim attempts by outcome.",
		}, []string{"result"}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Generation pipeline runs by service and outcome.",
		}, []string{"service", "outcome"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Affiliate conversion tracking results.",
		}, []string{"result"}),
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_seconds",
			Help:      "Duration of generation stages.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queue_depth",
			Help:      "Orders waiting for a generation worker.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.webhooks,
		m.claims,
		m.pipelineRuns,
		m.conversions,
		m.stageSeconds,
		m.queueDepth,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for scraping in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) WebhookReceived(provider, result string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) ClaimAttempt(result string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(result).Inc()
}

func (m *Metrics) PipelineFinished(service, outcome string) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(service, outcome).Inc()
}

func (m *Metrics) ConversionTracked(result string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
