package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	CatalogSearchesTotal   *prometheus.CounterVec
	PrescriptionsSubmitted prometheus.Counter
	ResolutionFallbacks    *prometheus.CounterVec
	SalaryCreditFailures   prometheus.Counter

	UpstreamRequestDuration *prometheus.HistogramVec
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		CatalogSearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "catalog",
			Name:      "searches_total",
			Help:      "Catalog searches forwarded upstream, by catalog kind.",
		}, []string{"kind"}),

		PrescriptionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "prescriptions_submitted_total",
			Help:      "Prescriptions successfully created upstream.",
		}),

		ResolutionFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "resolution_fallbacks_total",
			Help:      "Procedure/lab-test detail lookups that fell back to zero-cost rows.",
		}, []string{"kind"}),

		SalaryCreditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "salary_credit_failures_total",
			Help:      "Salary-credit calls that failed after the appointment was completed. Alert if non-zero.",
		}),

		UpstreamRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Hospital backend request latency distribution.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation", "status"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
