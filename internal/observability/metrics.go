// Package observability provides Prometheus metrics for the dashboard.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the refresh pipeline.
type Metrics struct {
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	SnapshotAge     prometheus.Gauge

	StoreQueryDuration *prometheus.HistogramVec
	StoreQueryErrors   *prometheus.CounterVec

	AlertsSent prometheus.Counter
}

// NewMetrics registers and returns the metrics set. Register it once per
// process; tests that only need the type should pass nil instead.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "predboard"
	}

	return &Metrics{
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of dashboard refresh cycles by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Dashboard refresh duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotAge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "snapshot_age_seconds",
			Help:      "Age of the last good snapshot in seconds",
		}),
		StoreQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Document store query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		StoreQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_errors_total",
			Help:      "Total number of document store query errors",
		}, []string{"operation"}),
		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "alerts_sent_total",
			Help:      "Total number of status alerts dispatched",
		}),
	}
}

// ObserveRefresh records one refresh cycle. Safe on a nil receiver.
func (m *Metrics) ObserveRefresh(status string, seconds float64) {
	if m == nil {
		return
	}
	m.RefreshesTotal.WithLabelValues(status).Inc()
	m.RefreshDuration.Observe(seconds)
}

// SetSnapshotAge updates the snapshot age gauge. Safe on a nil receiver.
func (m *Metrics) SetSnapshotAge(seconds float64) {
	if m == nil {
		return
	}
	m.SnapshotAge.Set(seconds)
}

// ObserveStoreQuery records one document store query. Safe on a nil
// receiver.
func (m *Metrics) ObserveStoreQuery(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.StoreQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		m.StoreQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAlertSent increments the alerts counter. Safe on a nil receiver.
func (m *Metrics) RecordAlertSent() {
	if m == nil {
		return
	}
	m.AlertsSent.Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
