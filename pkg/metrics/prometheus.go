// Package metrics wraps Prometheus instrumentation for fastsdk-go. It never
// hosts an HTTP server itself; Handler() exposes promhttp.Handler() for an
// embedding application to mount.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the container for every metric fastsdk-go records.
type Metrics struct {
	JobsSubmittedTotal *prometheus.CounterVec
	JobsFinishedTotal  *prometheus.CounterVec
	JobsFailedTotal    *prometheus.CounterVec
	JobsCancelledTotal *prometheus.CounterVec
	JobsInFlight       prometheus.Gauge

	StageDuration *prometheus.HistogramVec

	PollTicksTotal   *prometheus.CounterVec
	PollRetriesTotal *prometheus.CounterVec

	RegisteredServices prometheus.Gauge

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics creates and registers every metric under the given
// namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		JobsSubmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_submitted_total",
				Help:      "Total number of jobs submitted, by provider",
			},
			[]string{"provider"},
		),

		JobsFinishedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_finished_total",
				Help:      "Total number of jobs that finished successfully, by provider",
			},
			[]string{"provider"},
		),

		JobsFailedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_failed_total",
				Help:      "Total number of jobs that failed, by provider and error code",
			},
			[]string{"provider", "code"},
		),

		JobsCancelledTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_cancelled_total",
				Help:      "Total number of jobs cancelled, by provider",
			},
			[]string{"provider"},
		),

		JobsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_in_flight",
				Help:      "Current number of jobs being processed",
			},
		),

		StageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each job stage",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"stage"},
		),

		PollTicksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "poll_ticks_total",
				Help:      "Total number of poll ticks issued, by provider",
			},
			[]string{"provider"},
		),

		PollRetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "poll_retries_total",
				Help:      "Total number of poll ticks retried after a transient error, by provider",
			},
			[]string{"provider"},
		),

		RegisteredServices: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "registered_services",
				Help:      "Current number of services held in the registry",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "build_info",
				Help:      "Module build information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics container, initializing it with defaults
// if InitMetrics was never called.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("fastsdk", "")
	}
	return defaultMetrics
}

// RecordJobSubmitted increments the submitted counter and the in-flight gauge.
func (m *Metrics) RecordJobSubmitted(provider string) {
	m.JobsSubmittedTotal.WithLabelValues(provider).Inc()
	m.JobsInFlight.Inc()
}

// RecordJobFinished records a successful job completion.
func (m *Metrics) RecordJobFinished(provider string) {
	m.JobsFinishedTotal.WithLabelValues(provider).Inc()
	m.JobsInFlight.Dec()
}

// RecordJobFailed records a failed job, tagged with its fastsdk error code.
func (m *Metrics) RecordJobFailed(provider, code string) {
	m.JobsFailedTotal.WithLabelValues(provider, code).Inc()
	m.JobsInFlight.Dec()
}

// RecordJobCancelled records a cancelled job.
func (m *Metrics) RecordJobCancelled(provider string) {
	m.JobsCancelledTotal.WithLabelValues(provider).Inc()
	m.JobsInFlight.Dec()
}

// RecordStageDuration records how long a job stage took.
func (m *Metrics) RecordStageDuration(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordPollTick records one poll attempt, optionally a retried one.
func (m *Metrics) RecordPollTick(provider string, retried bool) {
	m.PollTicksTotal.WithLabelValues(provider).Inc()
	if retried {
		m.PollRetriesTotal.WithLabelValues(provider).Inc()
	}
}

// SetRegisteredServices updates the registry size gauge.
func (m *Metrics) SetRegisteredServices(n int) {
	m.RegisteredServices.Set(float64(n))
}

// SetServiceInfo records the module's build metadata.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler exposes the Prometheus scrape endpoint for an embedding
// application to mount; this module never listens on a port itself.
func Handler() http.Handler {
	return promhttp.Handler()
}
