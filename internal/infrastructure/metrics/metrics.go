// Package metrics exports sweep outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grupy/internal/ports/output"
	"grupy/internal/version"
)

const namespace = "grupy"

var _ output.SweepObserver = (*SweepMetrics)(nil)

// SweepMetrics implements output.SweepObserver on its own registry.
type SweepMetrics struct {
	registry *prometheus.Registry

	sweeps           *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
	lastSweep        prometheus.Gauge
	attendanceMarked prometheus.Counter
	voteRequestsSent prometheus.Counter
	groupFailures    *prometheus.CounterVec
}

// NewSweepMetrics registers the sweep collectors plus the Go and process collectors.
func NewSweepMetrics() *SweepMetrics {
	m := &SweepMetrics{
		registry: prometheus.NewRegistry(),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Sweep passes by result.",
		}, []string{"result"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Duration of sweep passes.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		lastSweep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last finished sweep pass.",
		}),
		attendanceMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "attendance_marked_total",
			Help:      "Groups whose attendance was processed.",
		}),
		voteRequestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "vote_requests_total",
			Help:      "Vote requests recorded for a participant.",
		}),
		groupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "group_failures_total",
			Help:      "Per-group failures by kind.",
		}, []string{"kind"}),
	}
	info := version.Get()
	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Build metadata of the running binary; always 1.",
		ConstLabels: prometheus.Labels{"version": info.Version, "commit": info.Commit, "go_version": info.GoVersion},
	})
	buildInfo.Set(1)
	m.registry.MustRegister(
		buildInfo,
		m.sweeps,
		m.sweepDuration,
		m.lastSweep,
		m.attendanceMarked,
		m.voteRequestsSent,
		m.groupFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *SweepMetrics) SweepFinished(duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sweeps.WithLabelValues(result).Inc()
	m.sweepDuration.Observe(duration.Seconds())
	m.lastSweep.SetToCurrentTime()
}

func (m *SweepMetrics) AttendanceMarked(count int) {
	m.attendanceMarked.Add(float64(count))
}

func (m *SweepMetrics) VoteRequestsSent(count int) {
	m.voteRequestsSent.Add(float64(count))
}

func (m *SweepMetrics) GroupFailed(kind string) {
	m.groupFailures.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *SweepMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SweepMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
