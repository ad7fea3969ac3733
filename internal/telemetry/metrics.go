package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CaptureMetrics exposes capture statistics on a private Prometheus registry.
type CaptureMetrics struct {
	registry *prometheus.Registry

	bufferFillGauge        *prometheus.GaugeVec
	bufferCapacityGauge    *prometheus.GaugeVec
	bufferUtilizationGauge *prometheus.GaugeVec
	droppedSamplesGauge    *prometheus.GaugeVec
	observationsTotal      *prometheus.CounterVec
}

// NewCaptureMetrics builds and registers the capture metric set.
func NewCaptureMetrics() *CaptureMetrics {
	m := &CaptureMetrics{
		registry: prometheus.NewRegistry(),
		bufferFillGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goairspy_buffer_fill_samples",
				Help: "IQ samples currently buffered per capture source",
			},
			[]string{"source"},
		),
		bufferCapacityGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goairspy_buffer_capacity_samples",
				Help: "Fixed buffer capacity in IQ samples per capture source",
			},
			[]string{"source"},
		),
		bufferUtilizationGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goairspy_buffer_utilization_ratio",
				Help: "Buffer fill ratio (0-1) per capture source",
			},
			[]string{"source"},
		),
		droppedSamplesGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goairspy_dropped_samples",
				Help: "Monotonic count of samples dropped by non-blocking overflow per capture source",
			},
			[]string{"source"},
		),
		observationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goairspy_capture_observations_total",
				Help: "Telemetry observations recorded per capture source",
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.bufferFillGauge,
		m.bufferCapacityGauge,
		m.bufferUtilizationGauge,
		m.droppedSamplesGauge,
		m.observationsTotal,
	)
	return m
}

// Observe mirrors one capture observation into the metric set.
func (m *CaptureMetrics) Observe(stats CaptureStats) {
	labels := prometheus.Labels{"source": stats.Source}
	m.bufferFillGauge.With(labels).Set(float64(stats.BufferedSamples))
	m.bufferCapacityGauge.With(labels).Set(float64(stats.BufferCapacity))
	if stats.BufferCapacity > 0 {
		m.bufferUtilizationGauge.With(labels).Set(float64(stats.BufferedSamples) / float64(stats.BufferCapacity))
	}
	m.droppedSamplesGauge.With(labels).Set(float64(stats.DroppedSamples))
	m.observationsTotal.With(labels).Inc()
}

// Handler serves the private registry in Prometheus exposition format.
func (m *CaptureMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
