package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/breeze-rmm/amd-driver-manager/internal/driverversion"
	"github.com/breeze-rmm/amd-driver-manager/internal/uninstall"
)

const namespace = "amd_driver_manager"

// Recorder holds one run's metrics in a private registry, written out as a
// node_exporter textfile when the run ends.
type Recorder struct {
	registry *prometheus.Registry

	sourceAttempts *prometheus.CounterVec
	sourceDuration *prometheus.GaugeVec
	driverFound    prometheus.Gauge
	driverInfo     *prometheus.GaugeVec
	dispatches     *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Driver version source attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		sourceDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Duration of the last lookup per source.",
		}, []string{"source"}),
		driverFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "driver_found",
			Help:      "1 if any source reported an AMD driver version.",
		}),
		driverInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "driver_info",
			Help:      "Resolved AMD driver display text and the source that produced it.",
		}, []string{"source", "display"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uninstall_dispatch_total",
			Help:      "Uninstall directives dispatched by directive and outcome.",
		}, []string{"directive", "outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last run.",
		}),
	}

	r.registry.MustRegister(
		r.sourceAttempts,
		r.sourceDuration,
		r.driverFound,
		r.driverInfo,
		r.dispatches,
		r.lastRun,
	)
	return r
}

// ObserveResolution records every source attempt and the final result.
func (r *Recorder) ObserveResolution(res driverversion.Resolution) {
	for _, a := range res.Attempts {
		r.sourceAttempts.WithLabelValues(a.Source, string(a.Outcome)).Inc()
		if a.Outcome != driverversion.OutcomeSkipped {
			r.sourceDuration.WithLabelValues(a.Source).Set(a.Duration.Seconds())
		}
	}
	if res.Found() {
		r.driverFound.Set(1)
		r.driverInfo.WithLabelValues(res.Source, res.DisplayText).Set(1)
	} else {
		r.driverFound.Set(0)
	}
	r.lastRun.Set(float64(time.Now().Unix()))
}

// ObserveDispatch records the outcome of an uninstall directive. Skipped
// dispatches (no directive) are not counted.
func (r *Recorder) ObserveDispatch(d uninstall.Directive, outcome uninstall.Outcome) {
	if outcome == uninstall.OutcomeSkipped {
		return
	}
	r.dispatches.WithLabelValues(d.String(), string(outcome)).Inc()
}

// Registry exposes the underlying registry as a Gatherer.
func (r *Recorder) Registry() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry atomically to path. An empty path is a
// no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
