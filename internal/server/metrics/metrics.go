// Package metrics exposes Prometheus instruments for the feature image
// switcher.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	SwitchTotal     *prometheus.CounterVec
	SwitchDuration  *prometheus.HistogramVec
	ButtonsRendered prometheus.Counter
	LiveClients     prometheus.Gauge
}

// New registers the instruments, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SwitchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feature_image_switch_total",
				Help: "Total number of feature image switch requests by result",
			},
			[]string{"result"},
		),

		SwitchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feature_image_switch_duration_seconds",
				Help:    "Duration of feature image switch requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),

		ButtonsRendered: f.NewCounter(
			prometheus.CounterOpts{
				Name: "feature_image_button_rendered_total",
				Help: "Total number of switch controls rendered",
			},
		),

		LiveClients: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "feature_image_live_clients",
				Help: "Number of connected live update clients",
			},
		),
	}
}

func (m *Metrics) SwitchObserved(result string, d time.Duration) {
	m.SwitchTotal.WithLabelValues(result).Inc()
	m.SwitchDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (m *Metrics) ButtonRendered() { m.ButtonsRendered.Inc() }

func (m *Metrics) ClientConnected() { m.LiveClients.Inc() }

func (m *Metrics) ClientDisconnected() { m.LiveClients.Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
