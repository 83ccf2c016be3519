package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astrometer_requests_total",
			Help: "Total API requests",
		},
		[]string{"endpoint", "status"},
	)

	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astrometer_request_latency_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	MeterComputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "astrometer_meter_computations_total",
			Help: "Total full meter bundle computations",
		},
	)

	CalibrationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astrometer_calibration_fallbacks_total",
			Help: "Meter normalizations that used the theoretical fallback",
		},
		[]string{"meter"},
	)

	AspectsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astrometer_aspects_detected",
			Help:    "Aspects detected per computation",
			Buckets: []float64{5, 10, 20, 30, 40, 60, 80},
		},
	)
)
