// Package metrics registers the prometheus instruments for ingestion and
// indicator computation.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics groups the service instruments.
type Metrics struct {
	ingestProcessed *prometheus.CounterVec
	ingestSkipped   prometheus.Counter
	ingestErrors    prometheus.Counter
	ingestFetches   *prometheus.CounterVec

	indicatorDuration *prometheus.HistogramVec
	indicatorDegraded *prometheus.CounterVec

	alertsEmitted *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// Default returns the process-wide metrics, registering them on first use.
func Default() *Metrics {
	return WithConfig(Config{})
}

// WithConfig returns the process-wide metrics with the given constant labels.
func WithConfig(cfg Config) *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return metrics
}

// ResetForTest clears the singleton so tests can re-register instruments.
func ResetForTest() {
	metricsOnce = sync.Once{}
	metrics = nil
}

func newMetrics(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "statelec"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		ingestProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "statelec_ingest_readings_processed_total",
			Help:        "Readings upserted from the telemetry feed.",
			ConstLabels: constLabels,
		}, []string{"source"}),
		ingestSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "statelec_ingest_readings_skipped_total",
			Help:        "Feed records skipped as duplicate timestamps.",
			ConstLabels: constLabels,
		}),
		ingestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "statelec_ingest_readings_errors_total",
			Help:        "Feed records rejected for missing or invalid fields.",
			ConstLabels: constLabels,
		}),
		ingestFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "statelec_ingest_fetches_total",
			Help:        "Telemetry feed fetch attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		indicatorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "statelec_indicator_duration_seconds",
			Help:        "Time spent assembling the composite indicators.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"period"}),
		indicatorDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "statelec_indicator_degraded_sections_total",
			Help:        "Indicator sections that fell back to their empty default.",
			ConstLabels: constLabels,
		}, []string{"section"}),
		alertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "statelec_alerts_emitted_total",
			Help:        "Alerts persisted by the evaluator.",
			ConstLabels: constLabels,
		}, []string{"type"}),
	}

	registerer.MustRegister(
		m.ingestProcessed,
		m.ingestSkipped,
		m.ingestErrors,
		m.ingestFetches,
		m.indicatorDuration,
		m.indicatorDegraded,
		m.alertsEmitted,
	)
	return m
}

func (m *Metrics) AddIngestProcessed(source string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ingestProcessed.WithLabelValues(source).Add(float64(count))
}

func (m *Metrics) AddIngestSkipped(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ingestSkipped.Add(float64(count))
}

func (m *Metrics) AddIngestErrors(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ingestErrors.Add(float64(count))
}

func (m *Metrics) IncIngestFetch(outcome string) {
	if m == nil {
		return
	}
	m.ingestFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveIndicatorDuration(period string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.indicatorDuration.WithLabelValues(period).Observe(elapsed.Seconds())
}

func (m *Metrics) IncIndicatorDegraded(section string) {
	if m == nil {
		return
	}
	m.indicatorDegraded.WithLabelValues(section).Inc()
}

func (m *Metrics) IncAlertEmitted(alertType string) {
	if m == nil {
		return
	}
	m.alertsEmitted.WithLabelValues(alertType).Inc()
}
