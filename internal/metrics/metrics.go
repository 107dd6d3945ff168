// Package metrics exposes the IVR counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payivr"

type Metrics struct {
	registry *prometheus.Registry

	StepsTotal         *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec
	PaymentsTotal      *prometheus.CounterVec
	PaymentDuration    prometheus.Histogram
	PaymentQueueDepth  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ivr",
				Name:      "steps_total",
				Help:      "Webhook turns handled, by step",
			},
			[]string{"step"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ivr",
				Name:      "validation_failures_total",
				Help:      "Caller entries rejected by a verify step",
			},
			[]string{"step"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Call-state store failures, by operation",
			},
			[]string{"op"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "processed_total",
				Help:      "Payments settled, by final status",
			},
			[]string{"status"},
		),
		PaymentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "duration_seconds",
				Help:      "Time spent settling one payment",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		PaymentQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "queue_depth",
				Help:      "Payments waiting for a worker",
			},
		),
	}

	m.registry.MustRegister(
		m.StepsTotal,
		m.ValidationFailures,
		m.StoreErrors,
		m.PaymentsTotal,
		m.PaymentDuration,
		m.PaymentQueueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) StepHandled(step string) {
	m.StepsTotal.WithLabelValues(step).Inc()
}

func (m *Metrics) ValidationFailed(step string) {
	m.ValidationFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) StoreFailed(op string) {
	m.StoreErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) PaymentSettled(status string, took time.Duration) {
	m.PaymentsTotal.WithLabelValues(status).Inc()
	m.PaymentDuration.Observe(took.Seconds())
}

func (m *Metrics) QueueDepth(n int) {
	m.PaymentQueueDepth.Set(float64(n))
}
