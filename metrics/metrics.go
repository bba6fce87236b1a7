// Package metrics records generator runs as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/broady/harmony/model"
)

// Registry holds the generator metrics. A nil *Registry records nothing.
type Registry struct {
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	WarningsTotal *prometheus.CounterVec
	SurfaceSize   *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry backed by a fresh Prometheus registry.
func NewRegistry() *Registry {
	return NewRegistryWith(prometheus.NewRegistry())
}

// NewRegistryWith registers the generator metrics with reg.
func NewRegistryWith(reg *prometheus.Registry) *Registry {
	return &Registry{
		RunsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmony_runs_total",
				Help: "Generator runs by result (ok or an error code)",
			},
			[]string{"result"},
		),
		RunDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harmony_run_duration_seconds",
				Help:    "Generator run duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		WarningsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmony_warnings_total",
				Help: "Warnings reported by generator runs",
			},
			[]string{"code"},
		),
		SurfaceSize: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harmony_surface_size",
				Help: "Size of the last generated surface",
			},
			[]string{"kind"},
		),
		registry: reg,
	}
}

// Gatherer returns the underlying Prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Surface counts what a successful run emitted.
type Surface struct {
	Operations int
	Types      int
	Converters int
}

// RecordRun records one run. result is "ok" or an error code.
func (r *Registry) RecordRun(result string, d time.Duration, warnings []model.Warning, s Surface) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(result).Inc()
	r.RunDuration.Observe(d.Seconds())
	for _, w := range warnings {
		r.WarningsTotal.WithLabelValues(w.Code).Inc()
	}
	if result != "ok" {
		return
	}
	r.SurfaceSize.WithLabelValues("operations").Set(float64(s.Operations))
	r.SurfaceSize.WithLabelValues("types").Set(float64(s.Types))
	r.SurfaceSize.WithLabelValues("converters").Set(float64(s.Converters))
}
