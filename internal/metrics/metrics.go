package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace        = "ivfit"
	metricsSubSystemReading = "readings"
	metricsSubSystemFit     = "fit"
	metricsSubSystemHTTP    = "http"
)

type Metrics struct {
	registry *prometheus.Registry

	ReadingsStored   *prometheus.CounterVec
	ReadingsRejected *prometheus.CounterVec
	ReadingsCleared  prometheus.Counter
	FitRequests      *prometheus.CounterVec
	RenderTime       prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	var m Metrics
	m.registry = prometheus.NewRegistry()

	m.ReadingsStored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubSystemReading,
		Name:      "stored_total",
		Help:      "The total number of readings appended to the store.",
	},
		[]string{"source"})
	m.registry.MustRegister(m.ReadingsStored)

	m.ReadingsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubSystemReading,
		Name:      "rejected_total",
		Help:      "The total number of readings that failed validation.",
	},
		[]string{"source"})
	m.registry.MustRegister(m.ReadingsRejected)

	m.ReadingsCleared = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubSystemReading,
		Name:      "clears_total",
		Help:      "The total number of clear requests.",
	})
	m.registry.MustRegister(m.ReadingsCleared)

	m.FitRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubSystemFit,
		Name:      "requests_total",
		Help:      "The total number of fit requests by outcome.",
	},
		[]string{"kind", "outcome"})
	m.registry.MustRegister(m.FitRequests)

	m.RenderTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubSystemFit,
		Name:      "render_seconds",
		Help:      "The time taken to render a fit chart.",
	})
	m.registry.MustRegister(m.RenderTime)

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubSystemHTTP,
		Name:      "requests_total",
		Help:      "The total number of HTTP requests served.",
	},
		[]string{"path", "method"})
	m.registry.MustRegister(m.HTTPRequests)

	return &m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
