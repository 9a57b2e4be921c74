// Package metrics records per-run validator metrics and writes them as a
// node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one rorv run.
type Metrics struct {
	registry *prometheus.Registry

	// Findings by validator
	Findings *prometheus.CounterVec

	// Validators skipped for missing prerequisites
	Skipped *prometheus.CounterVec

	// Validator wall time
	Duration *prometheus.HistogramVec

	// Unix time the run finished
	LastRun prometheus.Gauge
}

// New creates a Metrics instance on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rorv_validator_findings_total",
			Help: "Findings reported by each validator",
		}, []string{"validator"}),

		Skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rorv_validator_skipped_total",
			Help: "Validators skipped because a prerequisite was missing",
		}, []string{"validator"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rorv_validator_duration_seconds",
			Help:    "Duration of one validator run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"validator"}),

		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rorv_last_run_timestamp_seconds",
			Help: "Unix time the last validation run finished",
		}),
	}
}

// ValidatorRan records a completed validator.
func (m *Metrics) ValidatorRan(name string, findings int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Findings.WithLabelValues(name).Add(float64(findings))
	m.Duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ValidatorSkipped records a validator that could not run.
func (m *Metrics) ValidatorSkipped(name, _ string) {
	if m != nil {
		m.Skipped.WithLabelValues(name).Inc()
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile stamps the run time and writes every metric to path in the
// text exposition format.
func (m *Metrics) WriteTextfile(path string, finished time.Time) error {
	m.LastRun.Set(float64(finished.Unix()))
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
