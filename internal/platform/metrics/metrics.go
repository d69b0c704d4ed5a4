package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

// Metrics holds the service collectors. Use New with a dedicated registry in
// tests to avoid duplicate registration.
type Metrics struct {
	gatherer prometheus.Gatherer

	publishOutcomes *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		publishOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "publish_total",
				Help:      "Inventory change events by publish outcome.",
			},
			[]string{"outcome"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Failed store operations by operation name.",
			},
			[]string{"operation"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route and status code.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "code"},
		),
	}
	reg.MustRegister(m.publishOutcomes, m.storeErrors, m.requestDuration)
	return m
}

func (m *Metrics) PublishOutcome(outcome string) {
	m.publishOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StoreError(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
